// Package summary computes the per-scope dashboard aggregates: today's
// distinct employees, distinct visitors, and alert counts for a site,
// building, floor or gate. The shape is identical across scopes; only the
// topology join that narrows the device set differs.
package summary

import (
	"context"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/settings"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/timeline"

	"go.uber.org/zap"
)

// Scope selects which topology level a summary covers.
type Scope int

const (
	ScopeSite Scope = iota
	ScopeBuilding
	ScopeFloor
	ScopeGate
)

// Summary is the dashboard aggregate for one scope, all counts restricted
// to today.
type Summary struct {
	Employees                 int `json:"employees"`
	Visitors                  int `json:"visitors"`
	Alerts                    int `json:"alerts"`
	AbnormalTemperatureAlerts int `json:"abnormalTemperatureAlerts"`
	NoMaskAlerts              int `json:"noMaskAlerts"`
}

type Service struct {
	topology repository.TopologyRepo
	records  repository.RecordsRepo
	settings *settings.Resolver
	images   timeline.ImageFetcher
	logger   *zap.Logger

	// now is swappable for tests; "today" is a calendar-date match on
	// this clock, not a rolling 24 hours.
	now func() time.Time
}

func NewService(
	topology repository.TopologyRepo,
	records repository.RecordsRepo,
	settings *settings.Resolver,
	images timeline.ImageFetcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		topology: topology,
		records:  records,
		settings: settings,
		images:   images,
		logger:   logger,
		now:      time.Now,
	}
}

// Summarize resolves the scope's device set and computes today's counts.
func (s *Service) Summarize(ctx context.Context, scope Scope, scopeID int) (*Summary, error) {
	var (
		devices []string
		err     error
	)
	switch scope {
	case ScopeSite:
		devices, err = s.topology.DeviceIDsForSite(ctx, scopeID)
	case ScopeBuilding:
		devices, err = s.topology.DeviceIDsForBuilding(ctx, scopeID)
	case ScopeFloor:
		devices, err = s.topology.DeviceIDsForFloor(ctx, scopeID)
	case ScopeGate:
		devices, err = s.topology.DeviceIDsForGate(ctx, scopeID)
	}
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, devices)
}

// aggregate is the scope-independent core: all counts over one pre-resolved
// device-id set.
func (s *Service) aggregate(ctx context.Context, devices []string) (*Summary, error) {
	day := s.now()

	employees, err := s.records.CountEmployeesPresent(ctx, devices, day)
	if err != nil {
		return nil, err
	}
	visitors, err := s.records.CountVisitorMobiles(ctx, devices, day)
	if err != nil {
		return nil, err
	}

	threshold, err := s.settings.TemperatureThreshold(ctx)
	if err != nil {
		return nil, err
	}

	employeeTempAlerts, err := s.records.CountEmployeeTemperatureAlerts(ctx, devices, day, threshold)
	if err != nil {
		return nil, err
	}
	visitorTempAlerts, err := s.records.CountVisitorTemperatureAlerts(ctx, devices, day, threshold)
	if err != nil {
		return nil, err
	}
	employeeMaskAlerts, err := s.records.CountEmployeeMaskAlerts(ctx, devices, day)
	if err != nil {
		return nil, err
	}
	visitorMaskAlerts, err := s.records.CountVisitorMaskAlerts(ctx, devices, day)
	if err != nil {
		return nil, err
	}

	temperatureAlerts := employeeTempAlerts + visitorTempAlerts
	maskAlerts := employeeMaskAlerts + visitorMaskAlerts

	return &Summary{
		Employees:                 employees,
		Visitors:                  visitors,
		Alerts:                    temperatureAlerts + maskAlerts,
		AbnormalTemperatureAlerts: temperatureAlerts,
		NoMaskAlerts:              maskAlerts,
	}, nil
}

// EntranceLog returns today's entrance log for a site: the latest record
// per captured image in each stream, outer-joined like the person timeline.
func (s *Service) EntranceLog(ctx context.Context, siteID int) ([]timeline.Entry, error) {
	devices, err := s.topology.DeviceIDsForSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	day := s.now()
	temps, err := s.records.TemperatureByDateRange(ctx, devices, day, day)
	if err != nil {
		return nil, err
	}
	masks, err := s.records.MaskByDateRange(ctx, devices, day, day)
	if err != nil {
		return nil, err
	}

	entries := timeline.Join(latestTempPerImage(temps), latestMaskPerImage(masks))
	timeline.SortDescending(entries)
	timeline.ResolveImages(ctx, entries, s.images, s.logger)
	return entries, nil
}

// latestTempPerImage keeps only the most recent observation per captured
// image path, so one person lingering at a gate produces one log line.
func latestTempPerImage(obs []repository.TemperatureObservation) []repository.TemperatureObservation {
	latest := make(map[string]repository.TemperatureObservation, len(obs))
	for _, o := range obs {
		if cur, ok := latest[o.ImagePath]; !ok || o.Timestamp.After(cur.Timestamp) {
			latest[o.ImagePath] = o
		}
	}
	out := make([]repository.TemperatureObservation, 0, len(latest))
	for _, o := range latest {
		out = append(out, o)
	}
	return out
}

func latestMaskPerImage(obs []repository.MaskObservation) []repository.MaskObservation {
	latest := make(map[string]repository.MaskObservation, len(obs))
	for _, o := range obs {
		if cur, ok := latest[o.ImagePath]; !ok || o.Timestamp.After(cur.Timestamp) {
			latest[o.ImagePath] = o
		}
	}
	out := make([]repository.MaskObservation, 0, len(latest))
	for _, o := range latest {
		out = append(out, o)
	}
	return out
}

// Sites and SiteDevices expose the topology listings for the dashboard.
func (s *Service) Sites(ctx context.Context) ([]domain.Site, error) {
	return s.topology.ListSites(ctx)
}

func (s *Service) SiteDevices(ctx context.Context, siteID int) ([]domain.SiteDeviceRow, error) {
	return s.topology.SiteDevices(ctx, siteID)
}
