// Package settings resolves effective alert configuration with a two-tier
// fallback: a database override row first, then the deployment default.
// Lookups are side-effect-free and re-read per request, since overrides can
// change between requests.
package settings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"

	"go.uber.org/zap"
)

// Database override keys.
const (
	KeyTemperatureThreshold         = "TemperatureThreshold"
	KeyTemperatureAlertHeader       = "TemperatureAlertHeader"
	KeyMaskAlertHeader              = "MaskAlertHeader"
	KeyTemperatureAlertEmailSubject = "TemperatureAlertEmailSubject"
	KeyMaskAlertEmailSubject        = "MaskAlertEmailSubject"
	KeySendSMSAlertForTemperature   = "SendSMSAlertForTemperature"
	KeySendSMSAlertForMask          = "SendSMSAlertForMask"
	KeySendEmailAlertForTemperature = "SendEmailAlertForTemperature"
	KeySendEmailAlertForMask        = "SendEmailAlertForMask"
	KeySMSSender                    = "SMSSender"
	KeyEmailSenderName              = "EmailSenderName"
)

// Defaults is the deployment tier of the fallback, sourced from environment
// configuration at startup.
type Defaults struct {
	TemperatureThreshold      string
	TemperatureAlertHeader    string
	MaskAlertHeader           string
	SMSAlertForTemperature    string
	SMSAlertForMask           string
	EmailAlertForTemperature  string
	EmailAlertForMask         string
	SMSSender                 string
	EmailSenderName           string
}

type Resolver struct {
	repo     repository.ConfigRepo
	defaults Defaults
	logger   *zap.Logger
}

func NewResolver(repo repository.ConfigRepo, defaults Defaults, logger *zap.Logger) *Resolver {
	return &Resolver{repo: repo, defaults: defaults, logger: logger}
}

// resolve is the generic two-tier lookup: a non-empty database override
// wins, otherwise the deployment default is returned as-is.
func (r *Resolver) resolve(ctx context.Context, key, def string) (string, error) {
	v, err := r.repo.Value(ctx, key)
	if err != nil {
		return "", err
	}
	if v != "" {
		return v, nil
	}
	return def, nil
}

// TemperatureThreshold returns the effective threshold. A value that is
// absent or unparseable at both tiers resolves to zero; callers must treat
// zero as "no threshold configured".
func (r *Resolver) TemperatureThreshold(ctx context.Context) (float64, error) {
	v, err := r.repo.Value(ctx, KeyTemperatureThreshold)
	if err != nil {
		return 0, err
	}
	if t, perr := strconv.ParseFloat(v, 64); perr == nil {
		return t, nil
	}
	if t, perr := strconv.ParseFloat(r.defaults.TemperatureThreshold, 64); perr == nil {
		return t, nil
	}
	return 0, nil
}

// SetTemperatureThreshold validates and stores the override value.
func (r *Resolver) SetTemperatureThreshold(ctx context.Context, value string) error {
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return fmt.Errorf("invalid threshold value %q", value)
	}
	return r.repo.SetValue(ctx, KeyTemperatureThreshold, value)
}

func (r *Resolver) TemperatureAlertHeader(ctx context.Context) (string, error) {
	return r.resolve(ctx, KeyTemperatureAlertHeader, r.defaults.TemperatureAlertHeader)
}

func (r *Resolver) MaskAlertHeader(ctx context.Context) (string, error) {
	return r.resolve(ctx, KeyMaskAlertHeader, r.defaults.MaskAlertHeader)
}

// Email subjects fall back to the alert headers when no dedicated subject
// override is stored.
func (r *Resolver) TemperatureAlertEmailSubject(ctx context.Context) (string, error) {
	return r.resolve(ctx, KeyTemperatureAlertEmailSubject, r.defaults.TemperatureAlertHeader)
}

func (r *Resolver) MaskAlertEmailSubject(ctx context.Context) (string, error) {
	return r.resolve(ctx, KeyMaskAlertEmailSubject, r.defaults.MaskAlertHeader)
}

// resolveEnabled interprets a channel-enable flag: "1" enables, anything
// else (including garbage) silently disables.
func (r *Resolver) resolveEnabled(ctx context.Context, key, def string) (bool, error) {
	v, err := r.resolve(ctx, key, def)
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (r *Resolver) SMSAlertForTemperatureEnabled(ctx context.Context) (bool, error) {
	return r.resolveEnabled(ctx, KeySendSMSAlertForTemperature, r.defaults.SMSAlertForTemperature)
}

func (r *Resolver) SMSAlertForMaskEnabled(ctx context.Context) (bool, error) {
	return r.resolveEnabled(ctx, KeySendSMSAlertForMask, r.defaults.SMSAlertForMask)
}

func (r *Resolver) EmailAlertForTemperatureEnabled(ctx context.Context) (bool, error) {
	return r.resolveEnabled(ctx, KeySendEmailAlertForTemperature, r.defaults.EmailAlertForTemperature)
}

func (r *Resolver) EmailAlertForMaskEnabled(ctx context.Context) (bool, error) {
	return r.resolveEnabled(ctx, KeySendEmailAlertForMask, r.defaults.EmailAlertForMask)
}

func (r *Resolver) SMSSender(ctx context.Context) (string, error) {
	return r.resolve(ctx, KeySMSSender, r.defaults.SMSSender)
}

func (r *Resolver) EmailSenderName(ctx context.Context) (string, error) {
	return r.resolve(ctx, KeyEmailSenderName, r.defaults.EmailSenderName)
}
