package tracing

import (
	"context"
	"strconv"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/timeline"

	"go.uber.org/zap"
)

// PersonRef is one deduplicated person seen at the alert's gate.
type PersonRef struct {
	Name    string `json:"name"`
	Visitor bool   `json:"visitor"`
}

// Contact is one record of a person passing the alert's gate inside the
// query window.
type Contact struct {
	Visitor     bool   `json:"visitor"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Image       string `json:"image"`
	Timestamp   string `json:"timestamp"`
	Temperature string `json:"temperature"`
}

// gateWindow resolves the anchor alert to its gate's device set and returns
// the temperature observations on those devices in [start, end].
func (s *Service) gateWindow(ctx context.Context, alertTS, start, end time.Time) ([]colocated, error) {
	alert, err := s.ResolveAlert(ctx, alertTS)
	if err != nil {
		return nil, err
	}

	devices, err := s.topology.GateDeviceIDs(ctx, alert.DeviceID)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrAlertNotFound
	}

	obs, err := s.records.TemperatureInWindow(ctx, devices, start, end)
	if err != nil {
		return nil, err
	}

	// Left-join to employees by UID so known persons show their employee
	// name; visitors keep the name captured on the record.
	uids := make([]string, 0, len(obs))
	for _, o := range obs {
		if o.PersonUID != domain.VisitorUID {
			uids = append(uids, o.PersonUID)
		}
	}
	employees, err := s.employees.ByUIDs(ctx, uids)
	if err != nil {
		return nil, err
	}

	result := make([]colocated, 0, len(obs))
	for _, o := range obs {
		c := colocated{observation: o, name: o.PersonName, visitor: true, identity: o.Mobile}
		if o.PersonUID != domain.VisitorUID {
			c.visitor = false
			if emp, ok := employees[o.PersonUID]; ok {
				c.name = emp.EmployeeName
				c.identity = emp.EmployeeID
			} else {
				// Referential gap; keep the record-stored identity.
				c.identity = o.PersonUID
			}
		}
		result = append(result, c)
	}
	return result, nil
}

type colocated struct {
	observation repository.TemperatureObservation
	name        string
	visitor     bool
	identity    string
}

// PotentialView lists everyone (deduplicated) who entered through the
// alert's gate inside the window.
func (s *Service) PotentialView(ctx context.Context, alertTS, start, end time.Time) ([]PersonRef, error) {
	contacts, err := s.gateWindow(ctx, alertTS, start, end)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(contacts))
	result := make([]PersonRef, 0, len(contacts))
	for _, c := range contacts {
		if seen[c.identity] {
			continue
		}
		seen[c.identity] = true
		result = append(result, PersonRef{Name: c.name, Visitor: c.visitor})
	}
	return result, nil
}

// PotentialContacts lists the individual records of everyone who entered
// through the alert's gate inside the window, deduplicated by identity and
// capture second.
func (s *Service) PotentialContacts(ctx context.Context, alertTS, start, end time.Time) ([]Contact, error) {
	contacts, err := s.gateWindow(ctx, alertTS, start, end)
	if err != nil {
		return nil, err
	}

	type contactKey struct {
		identity string
		second   time.Time
	}
	seen := make(map[contactKey]bool, len(contacts))
	result := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		o := c.observation
		key := contactKey{identity: c.identity, second: domain.TruncateSecond(o.Timestamp)}
		if seen[key] {
			continue
		}
		seen[key] = true

		image := o.ImageBase64
		if image == "" && o.ImagePath != "" {
			if img, ferr := s.images.FetchAsBase64(ctx, o.ImagePath); ferr == nil {
				image = img
			} else {
				s.logger.Warn("contact image fetch failed",
					zap.String("path", o.ImagePath), zap.Error(ferr))
			}
		}

		result = append(result, Contact{
			Visitor:     c.visitor,
			Name:        c.name,
			Location:    o.Location,
			Image:       image,
			Timestamp:   domain.DisplayTime(o.Timestamp),
			Temperature: domain.FormatTemperature(o.Temperature),
		})
	}
	return result, nil
}

// AlertsBySite returns the joined alert timeline for a site between two
// dates, keeping only rows that actually alerted: mask absent, or
// temperature above the effective threshold.
func (s *Service) AlertsBySite(ctx context.Context, siteID int, start, end time.Time) ([]timeline.Entry, error) {
	devices, err := s.topology.DeviceIDsForSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	temps, err := s.records.TemperatureByDateRange(ctx, devices, start, end)
	if err != nil {
		return nil, err
	}
	masks, err := s.records.MaskByDateRange(ctx, devices, start, end)
	if err != nil {
		return nil, err
	}

	threshold, err := s.settings.TemperatureThreshold(ctx)
	if err != nil {
		return nil, err
	}

	joined := timeline.Join(temps, masks)
	alerts := joined[:0]
	for _, e := range joined {
		if !e.Mask || exceedsThreshold(e.Temperature, threshold) {
			alerts = append(alerts, e)
		}
	}

	timeline.SortDescending(alerts)
	timeline.ResolveImages(ctx, alerts, s.images, s.logger)
	return alerts, nil
}

func exceedsThreshold(temperature string, threshold float64) bool {
	if temperature == "" {
		return false
	}
	t, err := strconv.ParseFloat(temperature, 64)
	if err != nil {
		return false
	}
	return t > threshold
}
