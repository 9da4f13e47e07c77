package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"service-center/config"
)

// Fixed persistence keys for the editable settings strings.
const (
	settingsKeyWebhookURL      = "service_center:settings:webhook_url"
	settingsKeyComplaintSheet  = "service_center:settings:complaint_sheet_url"
	settingsKeyAttendanceSheet = "service_center:settings:attendance_sheet_url"
)

// Read actions the proxy and the notifier can resolve to an external path.
const (
	ReadActionComplaint    = "read-complaint"
	ReadActionTechnician   = "read-technician"
	ReadActionAttendance   = "read-attendance"
	ReadActionJobCompleted = "read-job-completed"
)

type Settings struct {
	WebhookURL         string `json:"webhook_url"`
	ComplaintSheetURL  string `json:"complaint_sheet_url"`
	AttendanceSheetURL string `json:"attendance_sheet_url"`
}

// SettingsService persists the three endpoint strings under fixed redis keys
// and falls back to the environment configuration when a key is unset.
type SettingsService struct {
	Redis *redis.Client
	cfg   *config.Config
}

func NewSettingsService(redisClient *redis.Client, cfg *config.Config) *SettingsService {
	return &SettingsService{
		Redis: redisClient,
		cfg:   cfg,
	}
}

func (s *SettingsService) Get(ctx context.Context) Settings {
	return Settings{
		WebhookURL:         s.stringOr(ctx, settingsKeyWebhookURL, s.cfg.WebhookURL),
		ComplaintSheetURL:  s.stringOr(ctx, settingsKeyComplaintSheet, s.cfg.ComplaintSheetURL),
		AttendanceSheetURL: s.stringOr(ctx, settingsKeyAttendanceSheet, s.cfg.AttendanceSheetURL),
	}
}

func (s *SettingsService) Update(ctx context.Context, settings Settings) error {
	pairs := map[string]string{
		settingsKeyWebhookURL:      settings.WebhookURL,
		settingsKeyComplaintSheet:  settings.ComplaintSheetURL,
		settingsKeyAttendanceSheet: settings.AttendanceSheetURL,
	}
	for key, value := range pairs {
		if err := s.Redis.Set(ctx, key, value, 0).Err(); err != nil {
			return fmt.Errorf("persist setting %s: %w", key, err)
		}
	}
	return nil
}

// WebhookURL resolves the current automation endpoint.
func (s *SettingsService) WebhookURL(ctx context.Context) string {
	return s.stringOr(ctx, settingsKeyWebhookURL, s.cfg.WebhookURL)
}

// EndpointForAction maps a read action to the external path it is served
// from. Attendance rows live on their own sheet; everything else is read
// from the complaint sheet.
func (s *SettingsService) EndpointForAction(ctx context.Context, action string) (string, bool) {
	settings := s.Get(ctx)

	var base string
	switch action {
	case ReadActionAttendance:
		base = settings.AttendanceSheetURL
	case ReadActionComplaint, ReadActionTechnician, ReadActionJobCompleted:
		base = settings.ComplaintSheetURL
	default:
		return "", false
	}
	if base == "" {
		return "", false
	}
	return base + "?action=" + action, true
}

func (s *SettingsService) stringOr(ctx context.Context, key, fallback string) string {
	value, err := s.Redis.Get(ctx, key).Result()
	if err != nil || value == "" {
		return fallback
	}
	return value
}
