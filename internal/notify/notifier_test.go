package notify

import (
	"context"
	"testing"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentText struct {
	from, to, text string
}

type fakeTextSender struct {
	sent []sentText
}

func (f *fakeTextSender) Send(_ context.Context, from, to, text string) error {
	f.sent = append(f.sent, sentText{from, to, text})
	return nil
}

type sentMail struct {
	toAddress, subject, body string
}

type fakeMailSender struct {
	sent []sentMail
}

func (f *fakeMailSender) Send(_ context.Context, _, _, toAddress, subject, body string) error {
	f.sent = append(f.sent, sentMail{toAddress, subject, body})
	return nil
}

type fakeConfigRepo struct {
	values  map[string]string
	mobiles []domain.AlertMobileNumber
	emails  []domain.AlertEmailAddress
}

func (f *fakeConfigRepo) Value(_ context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeConfigRepo) SetValue(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeConfigRepo) AlertMobiles(context.Context, int) ([]domain.AlertMobileNumber, error) {
	return f.mobiles, nil
}

func (f *fakeConfigRepo) AlertEmails(context.Context, int) ([]domain.AlertEmailAddress, error) {
	return f.emails, nil
}

func (f *fakeConfigRepo) AddAlertMobile(context.Context, int, string, string) error { return nil }
func (f *fakeConfigRepo) DeleteAlertMobile(context.Context, int) error              { return nil }
func (f *fakeConfigRepo) AddAlertEmail(context.Context, int, string, string) error  { return nil }
func (f *fakeConfigRepo) DeleteAlertEmail(context.Context, int) error               { return nil }

type fakeLocations struct {
	byDevice map[string]*domain.DeviceLocation
}

func (f *fakeLocations) ListSites(context.Context) ([]domain.Site, error) { return nil, nil }

func (f *fakeLocations) SiteDevices(context.Context, int) ([]domain.SiteDeviceRow, error) {
	return nil, nil
}

func (f *fakeLocations) DeviceIDsForSite(context.Context, int) ([]string, error)     { return nil, nil }
func (f *fakeLocations) DeviceIDsForBuilding(context.Context, int) ([]string, error) { return nil, nil }
func (f *fakeLocations) DeviceIDsForFloor(context.Context, int) ([]string, error)    { return nil, nil }
func (f *fakeLocations) DeviceIDsForGate(context.Context, int) ([]string, error)     { return nil, nil }
func (f *fakeLocations) GateDeviceIDs(context.Context, string) ([]string, error)     { return nil, nil }

func (f *fakeLocations) DeviceLocation(_ context.Context, deviceID string) (*domain.DeviceLocation, error) {
	return f.byDevice[deviceID], nil
}

func (f *fakeLocations) ClearUpdatedThresholdFlags(context.Context) error { return nil }

type notifierFixture struct {
	sms      *fakeTextSender
	mail     *fakeMailSender
	config   *fakeConfigRepo
	notifier *Notifier
}

func newNotifierFixture(overrides map[string]string) *notifierFixture {
	f := &notifierFixture{
		sms:  &fakeTextSender{},
		mail: &fakeMailSender{},
		config: &fakeConfigRepo{
			values:  overrides,
			mobiles: []domain.AlertMobileNumber{{ID: 1, Name: "Ops", MobileNumber: "91234567", SiteID: 1}},
			emails:  []domain.AlertEmailAddress{{ID: 1, Name: "Ops", EmailID: "ops@example.com", SiteID: 1}},
		},
	}
	topology := &fakeLocations{byDevice: map[string]*domain.DeviceLocation{
		"dev-1": {DeviceID: "dev-1", GateNumber: "G2", BuildingName: "Tower A", SiteID: 1},
	}}
	resolver := settings.NewResolver(f.config, settings.Defaults{
		TemperatureAlertHeader: "Abnormal temperature alert",
		MaskAlertHeader:        "No mask alert",
		SMSSender:              "C19Server",
		EmailSenderName:        "C19Server",
	}, zap.NewNop())
	f.notifier = NewNotifier(f.sms, f.mail, resolver, f.config, topology, zap.NewNop())
	return f
}

func allChannelsOn() map[string]string {
	return map[string]string{
		settings.KeySendSMSAlertForTemperature:   "1",
		settings.KeySendSMSAlertForMask:          "1",
		settings.KeySendEmailAlertForTemperature: "1",
		settings.KeySendEmailAlertForMask:        "1",
	}
}

func TestNotify_TemperatureAlertFansOutToBothChannels(t *testing.T) {
	f := newNotifierFixture(allChannelsOn())

	err := f.notifier.Notify(context.Background(), Event{
		DeviceID:    "dev-1",
		PersonName:  "Abhishek",
		Temperature: "38.2",
		Timestamp:   "2020-07-28 13:04:22",
	})
	require.NoError(t, err)

	require.Len(t, f.sms.sent, 1)
	assert.Equal(t, "C19Server", f.sms.sent[0].from)
	assert.Equal(t, "91234567", f.sms.sent[0].to)
	assert.Contains(t, f.sms.sent[0].text, "Abnormal temperature alert")
	assert.Contains(t, f.sms.sent[0].text,
		"Abhishek recorded a temperature of 38.2 at Tower A, gate G2 on 2020-07-28 13:04:22.")

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "ops@example.com", f.mail.sent[0].toAddress)
	assert.Equal(t, "Abnormal temperature alert", f.mail.sent[0].subject)
}

func TestNotify_MaskAlertUsesVisitorFallbackName(t *testing.T) {
	f := newNotifierFixture(allChannelsOn())

	err := f.notifier.Notify(context.Background(), Event{
		DeviceID:  "dev-1",
		Timestamp: "2020-07-28 13:04:22",
	})
	require.NoError(t, err)

	require.Len(t, f.sms.sent, 1)
	assert.Contains(t, f.sms.sent[0].text,
		"A visitor entered without a mask at Tower A, gate G2 on 2020-07-28 13:04:22.")
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "No mask alert", f.mail.sent[0].subject)
}

func TestNotify_DisabledChannelsStaySilent(t *testing.T) {
	f := newNotifierFixture(map[string]string{
		settings.KeySendSMSAlertForTemperature:   "0",
		settings.KeySendEmailAlertForTemperature: "1",
	})

	err := f.notifier.Notify(context.Background(), Event{
		DeviceID:    "dev-1",
		PersonName:  "Abhishek",
		Temperature: "38.2",
		Timestamp:   "2020-07-28 13:04:22",
	})
	require.NoError(t, err)

	assert.Empty(t, f.sms.sent)
	assert.Len(t, f.mail.sent, 1)
}

func TestNotify_UnplacedDeviceIsAnError(t *testing.T) {
	f := newNotifierFixture(allChannelsOn())

	err := f.notifier.Notify(context.Background(), Event{DeviceID: "dev-unknown"})
	require.Error(t, err)
	assert.Empty(t, f.sms.sent)
	assert.Empty(t, f.mail.sent)
}
