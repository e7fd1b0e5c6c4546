package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"rationtrack/models"
)

// Channel is a delivery channel for stock-alert notifications.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Content is the rendered message for one channel.
type Content struct {
	Subject string
	Body    string
}

// Sender delivers content to a destination through an external provider.
// Senders are opaque: retries are caller policy, never implicit.
type Sender interface {
	Send(ctx context.Context, destination string, content Content) error
}

// Recorder persists delivery state. RecordSent must be backed by a unique
// constraint on (user, alert, channel): it returns false when the row
// already exists, which callers treat as a benign already-sent signal.
type Recorder interface {
	RecordSent(ctx context.Context, userID, alertID string, channel Channel) (bool, error)
	MarkAlertSent(ctx context.Context, alertID string, sentAt time.Time) error
}

const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Outcome reports what happened for one (subscriber, channel) pair.
type Outcome struct {
	UserID  string  `json:"user_id"`
	Channel Channel `json:"channel"`
	Status  string  `json:"status"`
	Error   string  `json:"error,omitempty"`
}

// Result summarizes one dispatch run.
type Result struct {
	EmailsSent int       `json:"emailsSent"`
	SMSSent    int       `json:"smsSent"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"perUserOutcome"`
}

// Dispatcher fans an alert out to every matching subscriber, at most once
// per subscriber per channel.
type Dispatcher struct {
	Recorder Recorder
	Email    Sender
	SMS      Sender

	// SendTimeout bounds each individual provider call so one slow provider
	// does not stall the whole batch.
	SendTimeout time.Duration

	// Now is overridable for tests.
	Now func() time.Time
}

func NewDispatcher(recorder Recorder, email, sms Sender) *Dispatcher {
	return &Dispatcher{
		Recorder:    recorder,
		Email:       email,
		SMS:         sms,
		SendTimeout: 30 * time.Second,
		Now:         time.Now,
	}
}

// Matches reports whether a preference subscribes to the alert. Empty
// preferred sets are wildcards: narrow by shop, by commodity, or not at all.
func Matches(pref models.AlertPreference, alert models.StockAlert) bool {
	return (len(pref.PreferredShops) == 0 || contains(pref.PreferredShops, alert.ShopID)) &&
		(len(pref.PreferredCommodities) == 0 || contains(pref.PreferredCommodities, alert.CommodityName))
}

// Dispatch processes the alert against all subscriber preferences.
//
// Failures are per-subscriber-channel: a provider error for one subscriber
// never aborts the rest of the batch. After the fan-out the alert is marked
// sent exactly once, regardless of partial failures. A cancelled context
// stops the fan-out early; rows already recorded keep a retry from sending
// those pairs again.
func (d *Dispatcher) Dispatch(ctx context.Context, alert models.StockAlert, prefs []models.AlertPreference, alreadySent []models.SentNotification) (Result, error) {
	var result Result

	sent := make(map[string]bool, len(alreadySent))
	for _, n := range alreadySent {
		if n.AlertID == alert.ID {
			sent[n.UserID+"/"+n.Channel] = true
		}
	}

	for _, pref := range prefs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !Matches(pref, alert) {
			continue
		}

		if pref.EmailEnabled && pref.Email != "" {
			outcome := d.deliver(ctx, alert, pref.UserID, ChannelEmail, pref.Email, EmailContent(alert), sent)
			result.record(outcome)
		}
		if pref.SMSEnabled && pref.PhoneNumber != "" {
			outcome := d.deliver(ctx, alert, pref.UserID, ChannelSMS, pref.PhoneNumber, SMSContent(alert), sent)
			result.record(outcome)
		}
	}

	if err := d.Recorder.MarkAlertSent(ctx, alert.ID, d.Now()); err != nil {
		return result, fmt.Errorf("failed to mark alert %s as sent: %w", alert.ID, err)
	}

	return result, nil
}

func (d *Dispatcher) deliver(ctx context.Context, alert models.StockAlert, userID string, channel Channel, destination string, content Content, sent map[string]bool) Outcome {
	if sent[userID+"/"+string(channel)] {
		return Outcome{UserID: userID, Channel: channel, Status: OutcomeSkipped}
	}

	sender := d.Email
	if channel == ChannelSMS {
		sender = d.SMS
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.SendTimeout)
	defer cancel()

	if err := sender.Send(sendCtx, destination, content); err != nil {
		log.Printf("Failed to send %s notification to user %s for alert %s: %v", channel, userID, alert.ID, err)
		return Outcome{UserID: userID, Channel: channel, Status: OutcomeFailed, Error: err.Error()}
	}

	// The send succeeded, so this pair is covered either way: if the insert
	// hits the unique constraint a concurrent run recorded it, and if the
	// insert fails outright the accepted duplicate-send risk is logged.
	inserted, err := d.Recorder.RecordSent(ctx, userID, alert.ID, channel)
	if err != nil {
		log.Printf("Failed to record %s notification for user %s, alert %s after successful send (duplicate-send risk accepted): %v", channel, userID, alert.ID, err)
	} else if !inserted {
		log.Printf("Notification %s/%s/%s was already recorded by a concurrent run", userID, alert.ID, channel)
	}
	sent[userID+"/"+string(channel)] = true

	return Outcome{UserID: userID, Channel: channel, Status: OutcomeSent}
}

func (r *Result) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case OutcomeSent:
		if o.Channel == ChannelEmail {
			r.EmailsSent++
		} else {
			r.SMSSent++
		}
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
