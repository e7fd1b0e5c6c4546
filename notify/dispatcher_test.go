package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rationtrack/models"
)

type memRecorder struct {
	mu        sync.Mutex
	rows      map[string]bool
	alertSent map[string]time.Time
	failMark  bool
}

func newMemRecorder() *memRecorder {
	return &memRecorder{rows: make(map[string]bool), alertSent: make(map[string]time.Time)}
}

func (r *memRecorder) RecordSent(_ context.Context, userID, alertID string, channel Channel) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := userID + "/" + alertID + "/" + string(channel)
	if r.rows[key] {
		return false, nil
	}
	r.rows[key] = true
	return true, nil
}

func (r *memRecorder) MarkAlertSent(_ context.Context, alertID string, sentAt time.Time) error {
	if r.failMark {
		return errors.New("mark failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alertSent[alertID] = sentAt
	return nil
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (s *fakeSender) Send(_ context.Context, destination string, _ Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[destination] {
		return errors.New("provider rejected the message")
	}
	s.sent = append(s.sent, destination)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (r *memRecorder) sentNotifications(alertID string) []models.SentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SentNotification
	for key := range r.rows {
		parts := strings.SplitN(key, "/", 3)
		if parts[1] != alertID {
			continue
		}
		out = append(out, models.SentNotification{UserID: parts[0], AlertID: parts[1], Channel: parts[2]})
	}
	return out
}

func testAlert() models.StockAlert {
	qty := 500.0
	return models.StockAlert{
		ID:            "alert-1",
		ShopID:        "shop1",
		ShopName:      "Fair Price Shop - Ward 12",
		CommodityName: "Rice",
		ArrivalDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		QuantityKg:    &qty,
	}
}

func emailPref(userID, email string) models.AlertPreference {
	return models.AlertPreference{UserID: userID, Email: email, EmailEnabled: true}
}

func testDispatcher(rec *memRecorder, email, sms Sender) *Dispatcher {
	d := NewDispatcher(rec, email, sms)
	d.Now = func() time.Time { return time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC) }
	return d
}

func TestDispatchAtMostOnce(t *testing.T) {
	rec := newMemRecorder()
	email := &fakeSender{}
	d := testDispatcher(rec, email, &fakeSender{})

	alert := testAlert()
	prefs := []models.AlertPreference{emailPref("u1", "u1@example.com"), emailPref("u2", "u2@example.com")}

	result, err := d.Dispatch(context.Background(), alert, prefs, nil)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	assert.Equal(t, 2, result.EmailsSent)
	assert.Equal(t, 2, email.count())

	// A retry of the same batch sends nothing for already-covered pairs.
	retry, err := d.Dispatch(context.Background(), alert, prefs, rec.sentNotifications(alert.ID))
	if err != nil {
		t.Fatalf("retry dispatch failed: %v", err)
	}
	assert.Equal(t, 0, retry.EmailsSent)
	assert.Equal(t, 2, retry.Skipped)
	assert.Equal(t, 2, email.count(), "retry must not reach the provider")
	assert.Len(t, rec.rows, 2, "no (user, alert, channel) triple may exceed one row")
}

func TestDispatchWildcardMatching(t *testing.T) {
	alert := testAlert()

	wildcard := models.AlertPreference{UserID: "u1"}
	assert.True(t, Matches(wildcard, alert), "empty sets must match every alert")

	byShop := models.AlertPreference{UserID: "u2", PreferredShops: []string{"shop1", "shop9"}}
	assert.True(t, Matches(byShop, alert))

	otherShop := models.AlertPreference{UserID: "u3", PreferredShops: []string{"shop2"}}
	assert.False(t, Matches(otherShop, alert))

	byCommodity := models.AlertPreference{UserID: "u4", PreferredCommodities: []string{"Wheat"}}
	assert.False(t, Matches(byCommodity, alert))

	both := models.AlertPreference{
		UserID:               "u5",
		PreferredShops:       []string{"shop1"},
		PreferredCommodities: []string{"Rice"},
	}
	assert.True(t, Matches(both, alert))

	shopOnlyMatch := models.AlertPreference{
		UserID:               "u6",
		PreferredShops:       []string{"shop1"},
		PreferredCommodities: []string{"Wheat"},
	}
	assert.False(t, Matches(shopOnlyMatch, alert), "both narrowed sets must match")
}

func TestDispatchPartialFailureIsolation(t *testing.T) {
	rec := newMemRecorder()
	email := &fakeSender{failFor: map[string]bool{"u2@example.com": true}}
	d := testDispatcher(rec, email, &fakeSender{})

	alert := testAlert()
	prefs := []models.AlertPreference{
		emailPref("u1", "u1@example.com"),
		emailPref("u2", "u2@example.com"),
		emailPref("u3", "u3@example.com"),
	}

	result, err := d.Dispatch(context.Background(), alert, prefs, nil)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	assert.Equal(t, 2, result.EmailsSent)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Outcomes, 3)

	// Partial failure never blocks marking the alert as processed.
	if _, ok := rec.alertSent[alert.ID]; !ok {
		t.Fatal("alert sentAt must be set despite the per-user failure")
	}

	// The failed pair has no idempotency row, so a retry can cover it.
	assert.NotContains(t, rec.rows, "u2/alert-1/email")
}

// stallingSender blocks the listed destinations until the per-send context
// expires and delivers everything else immediately.
type stallingSender struct {
	fakeSender
	stallFor map[string]bool
}

func (s *stallingSender) Send(ctx context.Context, destination string, content Content) error {
	if s.stallFor[destination] {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.fakeSender.Send(ctx, destination, content)
}

func TestDispatchSendTimeout(t *testing.T) {
	rec := newMemRecorder()
	email := &stallingSender{stallFor: map[string]bool{"u2@example.com": true}}
	d := testDispatcher(rec, email, &fakeSender{})
	d.SendTimeout = 10 * time.Millisecond

	alert := testAlert()
	prefs := []models.AlertPreference{
		emailPref("u1", "u1@example.com"),
		emailPref("u2", "u2@example.com"),
		emailPref("u3", "u3@example.com"),
	}

	result, err := d.Dispatch(context.Background(), alert, prefs, nil)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// The stalled send times out; the rest of the batch is unaffected.
	assert.Equal(t, 2, result.EmailsSent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, email.count(), "the stalled destination must not count as delivered")

	var failed Outcome
	for _, o := range result.Outcomes {
		if o.Status == OutcomeFailed {
			failed = o
		}
	}
	assert.Equal(t, "u2", failed.UserID)
	assert.Contains(t, failed.Error, context.DeadlineExceeded.Error())

	// The timed-out pair has no idempotency row, so a retry can cover it.
	assert.NotContains(t, rec.rows, "u2/alert-1/email")
	if _, ok := rec.alertSent[alert.ID]; !ok {
		t.Fatal("a per-send timeout must not block marking the alert as processed")
	}
}

func TestDispatchChannels(t *testing.T) {
	rec := newMemRecorder()
	email := &fakeSender{}
	sms := &fakeSender{}
	d := testDispatcher(rec, email, sms)

	prefs := []models.AlertPreference{
		{UserID: "u1", Email: "u1@example.com", EmailEnabled: true, SMSEnabled: true, PhoneNumber: "+911234567890"},
		{UserID: "u2", SMSEnabled: true}, // SMS enabled but no phone number
		{UserID: "u3", Email: "u3@example.com"}, // email present but disabled
	}

	result, err := d.Dispatch(context.Background(), testAlert(), prefs, nil)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	assert.Equal(t, 1, result.EmailsSent)
	assert.Equal(t, 1, result.SMSSent)
	assert.Equal(t, 1, email.count())
	assert.Equal(t, 1, sms.count())
}

func TestDispatchDuplicateInsertIsBenign(t *testing.T) {
	rec := newMemRecorder()
	// Simulate a concurrent run that recorded the pair between our
	// pre-check and our insert.
	rec.rows["u1/alert-1/email"] = true

	email := &fakeSender{}
	d := testDispatcher(rec, email, &fakeSender{})

	result, err := d.Dispatch(context.Background(), testAlert(), []models.AlertPreference{emailPref("u1", "u1@example.com")}, nil)
	if err != nil {
		t.Fatalf("duplicate insert must not be fatal: %v", err)
	}
	assert.Equal(t, 1, result.EmailsSent)
	assert.Equal(t, 0, result.Failed)
}

func TestDispatchCancelledContext(t *testing.T) {
	rec := newMemRecorder()
	d := testDispatcher(rec, &fakeSender{}, &fakeSender{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Dispatch(ctx, testAlert(), []models.AlertPreference{emailPref("u1", "u1@example.com")}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, ok := rec.alertSent["alert-1"]; ok {
		t.Fatal("a cancelled batch must not mark the alert as sent")
	}
}
