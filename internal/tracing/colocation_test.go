package tracing

import (
	"context"
	"testing"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anchorAlert seeds a temperature record at alertTS on dev-1 so the gate
// window can resolve to dev-1's gate.
func anchorAlert(f *serviceFixture) {
	f.records.tempAt[alertTS] = &domain.TemperatureRecord{
		PersonUID: "uid-1", PersonName: "Abhishek", DeviceID: "dev-1",
		Temperature: 38.2, Timestamp: alertTS,
	}
	f.topology.gateDevices["dev-1"] = []string{"dev-1", "dev-1b"}
}

func TestPotentialView_DeduplicatesByIdentity(t *testing.T) {
	f := newServiceFixture()
	anchorAlert(f)
	f.employees.byUID["uid-2"] = &repository.EmployeeRef{EmployeeID: "E-101", EmployeeName: "Mei Lin"}
	f.records.tempsInWindow = []repository.TemperatureObservation{
		{PersonUID: "uid-2", PersonName: "cam-2", Timestamp: alertTS.Add(-time.Minute)},
		{PersonUID: "uid-2", PersonName: "cam-2", Timestamp: alertTS.Add(time.Minute)},
		{PersonUID: domain.VisitorUID, PersonName: "Visitor", Mobile: "555", Timestamp: alertTS},
	}

	refs, err := f.service.PotentialView(context.Background(), alertTS,
		alertTS.Add(-time.Hour), alertTS.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, refs, 2)

	// The employee row shows the employee-table name, not the camera one.
	assert.Equal(t, PersonRef{Name: "Mei Lin", Visitor: false}, refs[0])
	assert.Equal(t, PersonRef{Name: "Visitor", Visitor: true}, refs[1])
}

func TestPotentialView_UnknownGateIsAnError(t *testing.T) {
	f := newServiceFixture()
	f.records.tempAt[alertTS] = &domain.TemperatureRecord{
		PersonUID: "uid-1", DeviceID: "dev-unmapped", Timestamp: alertTS,
	}

	_, err := f.service.PotentialView(context.Background(), alertTS,
		alertTS.Add(-time.Hour), alertTS.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestPotentialContacts_DeduplicatesByIdentityAndSecond(t *testing.T) {
	f := newServiceFixture()
	anchorAlert(f)
	f.employees.byUID["uid-2"] = &repository.EmployeeRef{EmployeeID: "E-101", EmployeeName: "Mei Lin"}
	f.records.tempsInWindow = []repository.TemperatureObservation{
		// Same identity, same second captured by two devices at the gate.
		{PersonUID: "uid-2", DeviceID: "dev-1", Location: "Lobby Gate",
			Temperature: 36.7, Timestamp: alertTS},
		{PersonUID: "uid-2", DeviceID: "dev-1b", Location: "Lobby Gate",
			Temperature: 36.7, Timestamp: alertTS.Add(400 * time.Millisecond)},
		// Same identity, different second: kept.
		{PersonUID: "uid-2", DeviceID: "dev-1", Location: "Lobby Gate",
			Temperature: 36.8, Timestamp: alertTS.Add(5 * time.Second)},
	}

	contacts, err := f.service.PotentialContacts(context.Background(), alertTS,
		alertTS.Add(-time.Hour), alertTS.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	assert.Equal(t, "Mei Lin", contacts[0].Name)
	assert.Equal(t, "36.7", contacts[0].Temperature)
	assert.Equal(t, domain.DisplayTime(alertTS), contacts[0].Timestamp)
	assert.Equal(t, "36.8", contacts[1].Temperature)
}

func TestPotentialContacts_ResolvesStoredImages(t *testing.T) {
	f := newServiceFixture()
	anchorAlert(f)
	f.images.images["/img/c.jpg"] = "encoded"
	f.records.tempsInWindow = []repository.TemperatureObservation{
		{PersonUID: domain.VisitorUID, PersonName: "Visitor", Mobile: "555",
			Temperature: 36.9, Timestamp: alertTS, ImagePath: "/img/c.jpg"},
	}

	contacts, err := f.service.PotentialContacts(context.Background(), alertTS,
		alertTS.Add(-time.Hour), alertTS.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "encoded", contacts[0].Image)
}

func TestAlertsBySite_KeepsOnlyAlertingRows(t *testing.T) {
	f := newServiceFixture()
	f.topology.siteDevices[1] = []string{"dev-1"}
	f.config.values[settings.KeyTemperatureThreshold] = "37.5"

	f.records.tempsByRange = []repository.TemperatureObservation{
		// Above threshold: kept as a temperature alert.
		{PersonUID: "uid-1", PersonName: "Abhishek", Temperature: 38.2,
			Timestamp: alertTS},
		// Normal temperature with a matching mask record: not an alert.
		{PersonUID: "uid-2", PersonName: "Mei Lin", Temperature: 36.7,
			Timestamp: alertTS.Add(time.Minute)},
		// Normal temperature with no mask record at this second: no mask
		// was detected on entry, which alerts.
		{PersonUID: "uid-3", PersonName: "Ravi", Temperature: 36.5,
			Timestamp: alertTS.Add(2 * time.Minute)},
	}
	f.records.masksByRange = []repository.MaskObservation{
		{PersonUID: "uid-1", PersonName: "Abhishek", MaskValue: 1,
			Timestamp: alertTS},
		{PersonUID: "uid-2", PersonName: "Mei Lin", MaskValue: 1,
			Timestamp: alertTS.Add(time.Minute)},
	}

	alerts, err := f.service.AlertsBySite(context.Background(), 1,
		alertTS.Add(-24*time.Hour), alertTS.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, "36.5", alerts[0].Temperature)
	assert.False(t, alerts[0].Mask)
	assert.Equal(t, "38.2", alerts[1].Temperature)
	assert.True(t, alerts[1].Mask)
}
