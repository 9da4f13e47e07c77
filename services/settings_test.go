package services

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-center/config"
)

func setupTestSettings() (*SettingsService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	cfg := &config.Config{
		WebhookURL:         "https://hooks.example.com/flow",
		ComplaintSheetURL:  "https://hooks.example.com/complaint",
		AttendanceSheetURL: "https://hooks.example.com/attendance",
	}
	return NewSettingsService(db, cfg), mock
}

func TestSettingsService_Get_FallsBackToConfig(t *testing.T) {
	s, mock := setupTestSettings()
	ctx := context.Background()

	mock.ExpectGet(settingsKeyWebhookURL).RedisNil()
	mock.ExpectGet(settingsKeyComplaintSheet).RedisNil()
	mock.ExpectGet(settingsKeyAttendanceSheet).RedisNil()

	settings := s.Get(ctx)
	assert.Equal(t, "https://hooks.example.com/flow", settings.WebhookURL)
	assert.Equal(t, "https://hooks.example.com/complaint", settings.ComplaintSheetURL)
	assert.Equal(t, "https://hooks.example.com/attendance", settings.AttendanceSheetURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsService_Get_PrefersStoredValues(t *testing.T) {
	s, mock := setupTestSettings()
	ctx := context.Background()

	mock.ExpectGet(settingsKeyWebhookURL).SetVal("https://other.example.com/flow")
	mock.ExpectGet(settingsKeyComplaintSheet).SetVal("")
	mock.ExpectGet(settingsKeyAttendanceSheet).RedisNil()

	settings := s.Get(ctx)
	assert.Equal(t, "https://other.example.com/flow", settings.WebhookURL)
	// An empty stored value falls back the same as a missing one.
	assert.Equal(t, "https://hooks.example.com/complaint", settings.ComplaintSheetURL)
	assert.Equal(t, "https://hooks.example.com/attendance", settings.AttendanceSheetURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsService_Update(t *testing.T) {
	s, mock := setupTestSettings()

	// Map iteration order varies, so expect unordered.
	mock.MatchExpectationsInOrder(false)
	mock.ExpectSet(settingsKeyWebhookURL, "https://new.example.com/flow", 0).SetVal("OK")
	mock.ExpectSet(settingsKeyComplaintSheet, "https://new.example.com/complaint", 0).SetVal("OK")
	mock.ExpectSet(settingsKeyAttendanceSheet, "https://new.example.com/attendance", 0).SetVal("OK")

	err := s.Update(context.Background(), Settings{
		WebhookURL:         "https://new.example.com/flow",
		ComplaintSheetURL:  "https://new.example.com/complaint",
		AttendanceSheetURL: "https://new.example.com/attendance",
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsService_EndpointForAction(t *testing.T) {
	s, mock := setupTestSettings()
	ctx := context.Background()

	cases := []struct {
		action string
		want   string
	}{
		{ReadActionComplaint, "https://hooks.example.com/complaint?action=read-complaint"},
		{ReadActionTechnician, "https://hooks.example.com/complaint?action=read-technician"},
		{ReadActionJobCompleted, "https://hooks.example.com/complaint?action=read-job-completed"},
		{ReadActionAttendance, "https://hooks.example.com/attendance?action=read-attendance"},
	}

	for _, tc := range cases {
		mock.ExpectGet(settingsKeyWebhookURL).RedisNil()
		mock.ExpectGet(settingsKeyComplaintSheet).RedisNil()
		mock.ExpectGet(settingsKeyAttendanceSheet).RedisNil()

		url, ok := s.EndpointForAction(ctx, tc.action)
		require.True(t, ok, "action %s", tc.action)
		assert.Equal(t, tc.want, url)
	}

	mock.ExpectGet(settingsKeyWebhookURL).RedisNil()
	mock.ExpectGet(settingsKeyComplaintSheet).RedisNil()
	mock.ExpectGet(settingsKeyAttendanceSheet).RedisNil()

	_, ok := s.EndpointForAction(ctx, "read-unknown")
	assert.False(t, ok)
}
