// Package tracing implements the contact-tracing query engine: resolving an
// alert timestamp back to a record and a person, reconstructing the person's
// movement history, and finding everyone co-located at the same gate.
package tracing

import (
	"context"
	"errors"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/settings"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/timeline"

	"go.uber.org/zap"
)

// ErrAlertNotFound reports that a timestamp matches neither capture stream.
// A business-level caller error, never retried.
var ErrAlertNotFound = errors.New("could not find the alert")

// AlertKind says which stream matched the alert timestamp.
type AlertKind int

const (
	KindTemperature AlertKind = iota
	KindMask
)

// Alert is a resolved alert record with its subject identity.
type Alert struct {
	Kind        AlertKind
	Subject     domain.Subject
	PersonName  string
	DeviceID    string
	Timestamp   time.Time
	ImagePath   string
	ImageBase64 string
}

type Service struct {
	records   repository.RecordsRepo
	employees repository.EmployeesRepo
	topology  repository.TopologyRepo
	settings  *settings.Resolver
	images    timeline.ImageFetcher
	logger    *zap.Logger
}

func NewService(
	records repository.RecordsRepo,
	employees repository.EmployeesRepo,
	topology repository.TopologyRepo,
	settings *settings.Resolver,
	images timeline.ImageFetcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		records:   records,
		employees: employees,
		topology:  topology,
		settings:  settings,
		images:    images,
		logger:    logger,
	}
}

// ResolveAlert correlates an alert timestamp to its record: the temperature
// stream is checked first, then the mask stream. Matching is exact to the
// second after truncation.
func (s *Service) ResolveAlert(ctx context.Context, ts time.Time) (*Alert, error) {
	if rec, err := s.records.TemperatureAt(ctx, ts); err != nil {
		return nil, err
	} else if rec != nil {
		return &Alert{
			Kind:        KindTemperature,
			Subject:     rec.Subject(),
			PersonName:  rec.PersonName,
			DeviceID:    rec.DeviceID,
			Timestamp:   rec.Timestamp,
			ImagePath:   rec.ImagePath,
			ImageBase64: rec.ImageBase64,
		}, nil
	}

	if rec, err := s.records.MaskAt(ctx, ts); err != nil {
		return nil, err
	} else if rec != nil {
		return &Alert{
			Kind:        KindMask,
			Subject:     rec.Subject(),
			PersonName:  rec.PersonName,
			DeviceID:    rec.DeviceID,
			Timestamp:   rec.Timestamp,
			ImagePath:   rec.ImagePath,
			ImageBase64: rec.ImageBase64,
		}, nil
	}

	return nil, ErrAlertNotFound
}

// PersonDetails is the "who is this" answer for an alert: the identity
// photo next to the captured one, so an operator can compare them.
type PersonDetails struct {
	PersonName       string `json:"personName"`
	PersonImage      string `json:"personImage"`
	PersonAlertImage string `json:"personAlertImage"`
	IsVisitor        bool   `json:"isVisitor"`
}

// QueriedPersonDetails resolves an alert timestamp to its subject. Visitors
// and employees with no matching row (referential drift between streams and
// the employee table) fall back to the record's own captured data.
func (s *Service) QueriedPersonDetails(ctx context.Context, ts time.Time) (*PersonDetails, error) {
	alert, err := s.ResolveAlert(ctx, ts)
	if err != nil {
		return nil, err
	}

	captured := alert.ImageBase64
	if captured == "" && alert.ImagePath != "" {
		if img, ferr := s.images.FetchAsBase64(ctx, alert.ImagePath); ferr == nil {
			captured = img
		} else {
			s.logger.Warn("captured image fetch failed", zap.Error(ferr))
		}
	}

	details := &PersonDetails{
		PersonName:       alert.PersonName,
		PersonImage:      captured,
		PersonAlertImage: captured,
		IsVisitor:        true,
	}

	if !alert.Subject.IsVisitor() {
		emp, err := s.employees.ByUID(ctx, alert.Subject.UID)
		if err != nil {
			return nil, err
		}
		if emp != nil {
			details.IsVisitor = false
			if emp.ImageBase64 != "" {
				details.PersonImage = emp.ImageBase64
			}
		}
	}

	return details, nil
}

// PersonTimeline rebuilds the full record history of the alert's subject
// since a start time: both streams, outer-joined per second, most recent
// first.
func (s *Service) PersonTimeline(ctx context.Context, alertTS, sinceTS time.Time) ([]timeline.Entry, error) {
	alert, err := s.ResolveAlert(ctx, alertTS)
	if err != nil {
		return nil, err
	}

	temps, err := s.records.TemperatureBySubject(ctx, alert.Subject, sinceTS)
	if err != nil {
		return nil, err
	}
	masks, err := s.records.MaskBySubject(ctx, alert.Subject, sinceTS)
	if err != nil {
		return nil, err
	}

	entries := timeline.Join(temps, masks)
	timeline.SortDescending(entries)
	timeline.ResolveImages(ctx, entries, s.images, s.logger)
	return entries, nil
}
