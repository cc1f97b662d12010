package repository

import (
	"context"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
)

// TopologyRepo resolves the Device → Gate → Floor → Building → Site chain.
// Scope lookups return deduplicated device-id sets; an unknown scope id
// yields an empty set, not an error.
type TopologyRepo interface {
	ListSites(ctx context.Context) ([]domain.Site, error)
	SiteDevices(ctx context.Context, siteID int) ([]domain.SiteDeviceRow, error)

	DeviceIDsForSite(ctx context.Context, siteID int) ([]string, error)
	DeviceIDsForBuilding(ctx context.Context, buildingID int) ([]string, error)
	DeviceIDsForFloor(ctx context.Context, floorID int) ([]string, error)
	DeviceIDsForGate(ctx context.Context, gateID int) ([]string, error)

	// GateDeviceIDs returns every device mounted at the same gate as the
	// given device, including the device itself.
	GateDeviceIDs(ctx context.Context, deviceID string) ([]string, error)

	DeviceLocation(ctx context.Context, deviceID string) (*domain.DeviceLocation, error)

	// ClearUpdatedThresholdFlags marks every device as needing a threshold
	// re-push; called when the temperature threshold changes.
	ClearUpdatedThresholdFlags(ctx context.Context) error
}

// TemperatureObservation is a record projected for timeline joining: the
// location is already resolved to the gate's descriptive details.
type TemperatureObservation struct {
	PersonUID   string
	PersonName  string
	Mobile      string
	DeviceID    string
	Location    string
	Temperature float64
	Timestamp   time.Time
	ImagePath   string
	ImageBase64 string
}

// MaskObservation mirrors TemperatureObservation for the mask stream.
type MaskObservation struct {
	PersonUID   string
	PersonName  string
	Mobile      string
	DeviceID    string
	Location    string
	MaskValue   int
	Timestamp   time.Time
	ImagePath   string
	ImageBase64 string
}

// RecordsRepo is read-only access to the two capture streams.
type RecordsRepo interface {
	// TemperatureAt / MaskAt find a record whose second-truncated timestamp
	// equals ts. A nil record with nil error means no match.
	TemperatureAt(ctx context.Context, ts time.Time) (*domain.TemperatureRecord, error)
	MaskAt(ctx context.Context, ts time.Time) (*domain.MaskRecord, error)

	// Per-subject projections since a start time, for timeline joining.
	TemperatureBySubject(ctx context.Context, subject domain.Subject, since time.Time) ([]TemperatureObservation, error)
	MaskBySubject(ctx context.Context, subject domain.Subject, since time.Time) ([]MaskObservation, error)

	// TemperatureInWindow returns temperature observations on any of the
	// given devices inside [start, end], for contact tracing.
	TemperatureInWindow(ctx context.Context, deviceIDs []string, start, end time.Time) ([]TemperatureObservation, error)

	// Date-range projections over a device set (calendar-date bounds),
	// for the site alert log and the entrance log.
	TemperatureByDateRange(ctx context.Context, deviceIDs []string, start, end time.Time) ([]TemperatureObservation, error)
	MaskByDateRange(ctx context.Context, deviceIDs []string, start, end time.Time) ([]MaskObservation, error)

	// Aggregates for the summary endpoints, all scoped to the calendar
	// date of day and the given device set.
	CountEmployeesPresent(ctx context.Context, deviceIDs []string, day time.Time) (int, error)
	CountVisitorMobiles(ctx context.Context, deviceIDs []string, day time.Time) (int, error)
	CountEmployeeTemperatureAlerts(ctx context.Context, deviceIDs []string, day time.Time, threshold float64) (int, error)
	CountVisitorTemperatureAlerts(ctx context.Context, deviceIDs []string, day time.Time, threshold float64) (int, error)
	CountEmployeeMaskAlerts(ctx context.Context, deviceIDs []string, day time.Time) (int, error)
	CountVisitorMaskAlerts(ctx context.Context, deviceIDs []string, day time.Time) (int, error)
}

// EmployeeRef is the minimal employee identity used by contact tracing.
type EmployeeRef struct {
	EmployeeID   string
	EmployeeName string
	ImageBase64  string
}

// EmployeesRepo is read-only employee lookup by face UID.
type EmployeesRepo interface {
	// ByUID returns nil, nil when no employee carries the UID.
	ByUID(ctx context.Context, uid string) (*EmployeeRef, error)
	// ByUIDs maps each UID with a matching employee; missing UIDs are
	// simply absent from the result.
	ByUIDs(ctx context.Context, uids []string) (map[string]EmployeeRef, error)
}

// ConfigRepo is the database tier of the two-tier configuration lookup,
// plus the per-site alert recipient lists.
type ConfigRepo interface {
	Value(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error

	AlertMobiles(ctx context.Context, siteID int) ([]domain.AlertMobileNumber, error)
	AlertEmails(ctx context.Context, siteID int) ([]domain.AlertEmailAddress, error)
	AddAlertMobile(ctx context.Context, siteID int, name, mobile string) error
	DeleteAlertMobile(ctx context.Context, id int) error
	AddAlertEmail(ctx context.Context, siteID int, name, email string) error
	DeleteAlertEmail(ctx context.Context, id int) error
}
