package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"service-center/models"
)

// DraftExtractor is the external model-assisted field extraction
// collaborator: given raw complaint text or image bytes, return a
// best-effort partial ticket draft. Its internals are out of scope here;
// the core only depends on this interface.
type DraftExtractor interface {
	ExtractDraft(ctx context.Context, raw []byte, contentType string) (*models.TicketDraft, error)
}

// WebhookDraftExtractor forwards the raw input to an external extraction
// endpoint and decodes whatever partial draft comes back.
type WebhookDraftExtractor struct {
	URL string
	hc  *http.Client
}

func NewWebhookDraftExtractor(url string) *WebhookDraftExtractor {
	return &WebhookDraftExtractor{
		URL: url,
		hc:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *WebhookDraftExtractor) ExtractDraft(ctx context.Context, raw []byte, contentType string) (*models.TicketDraft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build extract request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := e.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract draft: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extract draft: unexpected status %d", resp.StatusCode)
	}

	var draft models.TicketDraft
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}
