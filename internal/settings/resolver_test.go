package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConfigRepo struct {
	values map[string]string
	err    error
}

func (f *fakeConfigRepo) Value(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.values[key], nil
}

func (f *fakeConfigRepo) SetValue(_ context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.values[key] = value
	return nil
}

func (f *fakeConfigRepo) AlertMobiles(context.Context, int) ([]domain.AlertMobileNumber, error) {
	return nil, nil
}
func (f *fakeConfigRepo) AlertEmails(context.Context, int) ([]domain.AlertEmailAddress, error) {
	return nil, nil
}
func (f *fakeConfigRepo) AddAlertMobile(context.Context, int, string, string) error { return nil }
func (f *fakeConfigRepo) DeleteAlertMobile(context.Context, int) error              { return nil }
func (f *fakeConfigRepo) AddAlertEmail(context.Context, int, string, string) error  { return nil }
func (f *fakeConfigRepo) DeleteAlertEmail(context.Context, int) error               { return nil }

func newTestResolver(values map[string]string, defaults Defaults) *Resolver {
	if values == nil {
		values = map[string]string{}
	}
	return NewResolver(&fakeConfigRepo{values: values}, defaults, zap.NewNop())
}

func TestTemperatureThreshold_DatabaseOverrideWins(t *testing.T) {
	r := newTestResolver(
		map[string]string{KeyTemperatureThreshold: "38.1"},
		Defaults{TemperatureThreshold: "37.5"},
	)

	got, err := r.TemperatureThreshold(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 38.1, got)
}

func TestTemperatureThreshold_FallsBackToDefault(t *testing.T) {
	r := newTestResolver(nil, Defaults{TemperatureThreshold: "37.5"})

	got, err := r.TemperatureThreshold(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 37.5, got)
}

func TestTemperatureThreshold_UnparseableOverrideFallsThrough(t *testing.T) {
	r := newTestResolver(
		map[string]string{KeyTemperatureThreshold: "hot"},
		Defaults{TemperatureThreshold: "37.5"},
	)

	got, err := r.TemperatureThreshold(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 37.5, got)
}

func TestTemperatureThreshold_ZeroWhenUnsetEverywhere(t *testing.T) {
	r := newTestResolver(nil, Defaults{})

	got, err := r.TemperatureThreshold(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestTemperatureThreshold_RepoError(t *testing.T) {
	r := NewResolver(&fakeConfigRepo{err: errors.New("db down")}, Defaults{}, zap.NewNop())

	_, err := r.TemperatureThreshold(context.Background())
	require.Error(t, err)
}

func TestSetTemperatureThreshold(t *testing.T) {
	repo := &fakeConfigRepo{values: map[string]string{}}
	r := NewResolver(repo, Defaults{}, zap.NewNop())

	require.NoError(t, r.SetTemperatureThreshold(context.Background(), "37.8"))
	assert.Equal(t, "37.8", repo.values[KeyTemperatureThreshold])

	err := r.SetTemperatureThreshold(context.Background(), "hot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid threshold")
}

func TestChannelEnables(t *testing.T) {
	r := newTestResolver(
		map[string]string{KeySendSMSAlertForTemperature: "1"},
		Defaults{SMSAlertForMask: "1", EmailAlertForTemperature: "yes"},
	)
	ctx := context.Background()

	enabled, err := r.SMSAlertForTemperatureEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = r.SMSAlertForMaskEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	// Anything other than "1" disables, including would-be truthy values.
	enabled, err = r.EmailAlertForTemperatureEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = r.EmailAlertForMaskEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestEmailSubjectsFallBackToHeaders(t *testing.T) {
	r := newTestResolver(nil, Defaults{
		TemperatureAlertHeader: "Abnormal temperature alert",
		MaskAlertHeader:        "No mask alert",
	})
	ctx := context.Background()

	subject, err := r.TemperatureAlertEmailSubject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Abnormal temperature alert", subject)

	subject, err = r.MaskAlertEmailSubject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No mask alert", subject)
}
