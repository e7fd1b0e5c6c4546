package handlers

import (
	"context"
	"fmt"
	"log"

	"rationtrack/config"
	"rationtrack/database"
	"rationtrack/notify"
	"rationtrack/store"
)

// BuildDispatcher wires the notification dispatcher from the application
// config. Channels without provider credentials fall back to a log-only
// sender so local development works without SMTP or an SMS gateway.
func BuildDispatcher(alerts *store.AlertStore) *notify.Dispatcher {
	cfg := config.AppConfig

	var email notify.Sender = notify.LogSender{Channel: "email"}
	if cfg.SMTPHost != "" {
		email = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	var sms notify.Sender = notify.LogSender{Channel: "sms"}
	if cfg.SMSGatewayURL != "" {
		sms = notify.NewGatewaySender(cfg.SMSGatewayURL, cfg.SMSGatewayKey)
	}

	return notify.NewDispatcher(alerts, email, sms)
}

// DispatchAlert fans one alert out to every matching subscriber. Safe to
// call again for the same alert: previously notified (user, channel) pairs
// are skipped, so a rerun only retries failures.
func DispatchAlert(ctx context.Context, alertID string) (notify.Result, error) {
	alerts := store.NewAlertStore(database.GetDB())

	alert, err := alerts.GetAlert(ctx, alertID)
	if err != nil {
		return notify.Result{}, err
	}

	prefs, err := alerts.ListPreferences(ctx)
	if err != nil {
		return notify.Result{}, fmt.Errorf("failed to load subscriber preferences: %w", err)
	}

	alreadySent, err := alerts.ListSentForAlert(ctx, alertID)
	if err != nil {
		return notify.Result{}, fmt.Errorf("failed to load sent notifications: %w", err)
	}

	dispatcher := BuildDispatcher(alerts)
	return dispatcher.Dispatch(ctx, alert, prefs, alreadySent)
}

// DispatchPendingAlerts dispatches every alert whose sent_at is still unset.
// Called by the periodic sweep so alerts created while providers were down
// eventually go out.
func DispatchPendingAlerts(ctx context.Context) {
	alerts := store.NewAlertStore(database.GetDB())

	pending, err := alerts.ListUnsentAlerts(ctx)
	if err != nil {
		log.Printf("Dispatch sweep: failed to list unsent alerts: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	log.Printf("Dispatch sweep: %d unsent alert(s) pending", len(pending))
	for _, alert := range pending {
		result, err := DispatchAlert(ctx, alert.ID)
		if err != nil {
			log.Printf("Dispatch sweep: alert %s failed: %v", alert.ID, err)
			continue
		}
		log.Printf("Dispatch sweep: alert %s dispatched (email=%d sms=%d skipped=%d failed=%d)",
			alert.ID, result.EmailsSent, result.SMSSent, result.Skipped, result.Failed)
	}
}
