// Package notify fans an alert event out to the site's configured contact
// lists, as SMS through Nexmo and email through SendGrid. Channel enables,
// headers and sender identities come from the runtime configuration
// resolver so they can be changed without a redeploy.
package notify

import (
	"context"
	"fmt"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/settings"

	"go.uber.org/zap"
)

// Event is one alert worth notifying about, already evaluated against the
// temperature threshold by the caller.
type Event struct {
	DeviceID    string
	PersonName  string
	Temperature string // formatted, empty for mask alerts
	Timestamp   string // display-formatted
}

// TextSender delivers one SMS. Satisfied by SMSSender.
type TextSender interface {
	Send(ctx context.Context, from, to, text string) error
}

// MailSender delivers one email. Satisfied by EmailSender.
type MailSender interface {
	Send(ctx context.Context, fromName, toName, toAddress, subject, body string) error
}

// Notifier composes and delivers alert notifications.
type Notifier struct {
	sms      TextSender
	email    MailSender
	settings *settings.Resolver
	config   repository.ConfigRepo
	topology repository.TopologyRepo
	logger   *zap.Logger
}

func NewNotifier(
	sms TextSender,
	email MailSender,
	settings *settings.Resolver,
	config repository.ConfigRepo,
	topology repository.TopologyRepo,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		sms:      sms,
		email:    email,
		settings: settings,
		config:   config,
		topology: topology,
		logger:   logger,
	}
}

// Notify delivers the event to every configured contact of the device's
// site. Individual delivery failures are logged and do not stop the
// fan-out; only failures before any delivery can start are returned.
func (n *Notifier) Notify(ctx context.Context, event Event) error {
	location, err := n.topology.DeviceLocation(ctx, event.DeviceID)
	if err != nil {
		return fmt.Errorf("failed to resolve device location for %s: %w", event.DeviceID, err)
	}
	if location == nil {
		return fmt.Errorf("device %s is not placed at any gate", event.DeviceID)
	}

	body := n.composeBody(event, location)

	if err := n.notifySMS(ctx, event, location, body); err != nil {
		n.logger.Error("SMS alert fan-out failed", zap.Error(err))
	}
	if err := n.notifyEmail(ctx, event, location, body); err != nil {
		n.logger.Error("Email alert fan-out failed", zap.Error(err))
	}
	return nil
}

func (n *Notifier) composeBody(event Event, location *domain.DeviceLocation) string {
	person := event.PersonName
	if person == "" {
		person = "A visitor"
	}
	place := fmt.Sprintf("%s, gate %s", location.BuildingName, location.GateNumber)
	if event.Temperature != "" {
		return fmt.Sprintf("%s recorded a temperature of %s at %s on %s.",
			person, event.Temperature, place, event.Timestamp)
	}
	return fmt.Sprintf("%s entered without a mask at %s on %s.",
		person, place, event.Timestamp)
}

func (n *Notifier) notifySMS(ctx context.Context, event Event, location *domain.DeviceLocation, body string) error {
	enabled, err := n.channelEnabled(ctx, event, true)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	header, err := n.header(ctx, event)
	if err != nil {
		return err
	}
	sender, err := n.settings.SMSSender(ctx)
	if err != nil {
		return err
	}
	contacts, err := n.config.AlertMobiles(ctx, location.SiteID)
	if err != nil {
		return fmt.Errorf("failed to load alert mobiles for site %d: %w", location.SiteID, err)
	}

	text := header + "\n" + body
	for _, c := range contacts {
		if err := n.sms.Send(ctx, sender, c.MobileNumber, text); err != nil {
			n.logger.Error("Failed to send alert SMS",
				zap.String("to", c.MobileNumber),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (n *Notifier) notifyEmail(ctx context.Context, event Event, location *domain.DeviceLocation, body string) error {
	enabled, err := n.channelEnabled(ctx, event, false)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	subject, err := n.subject(ctx, event)
	if err != nil {
		return err
	}
	senderName, err := n.settings.EmailSenderName(ctx)
	if err != nil {
		return err
	}
	contacts, err := n.config.AlertEmails(ctx, location.SiteID)
	if err != nil {
		return fmt.Errorf("failed to load alert emails for site %d: %w", location.SiteID, err)
	}

	for _, c := range contacts {
		if err := n.email.Send(ctx, senderName, c.Name, c.EmailID, subject, body); err != nil {
			n.logger.Error("Failed to send alert email",
				zap.String("to", c.EmailID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (n *Notifier) channelEnabled(ctx context.Context, event Event, sms bool) (bool, error) {
	switch {
	case sms && event.Temperature != "":
		return n.settings.SMSAlertForTemperatureEnabled(ctx)
	case sms:
		return n.settings.SMSAlertForMaskEnabled(ctx)
	case event.Temperature != "":
		return n.settings.EmailAlertForTemperatureEnabled(ctx)
	default:
		return n.settings.EmailAlertForMaskEnabled(ctx)
	}
}

func (n *Notifier) header(ctx context.Context, event Event) (string, error) {
	if event.Temperature != "" {
		return n.settings.TemperatureAlertHeader(ctx)
	}
	return n.settings.MaskAlertHeader(ctx)
}

func (n *Notifier) subject(ctx context.Context, event Event) (string, error) {
	if event.Temperature != "" {
		return n.settings.TemperatureAlertEmailSubject(ctx)
	}
	return n.settings.MaskAlertEmailSubject(ctx)
}
