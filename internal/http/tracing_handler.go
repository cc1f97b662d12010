package httpapi

import (
	"net/http"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/timeline"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/tracing"

	"go.uber.org/zap"
)

// TracingHandler serves the contact-tracing endpoints.
type TracingHandler struct {
	tracing *tracing.Service
	logger  *zap.Logger
}

func NewTracingHandler(tracing *tracing.Service, logger *zap.Logger) *TracingHandler {
	return &TracingHandler{tracing: tracing, logger: logger}
}

// timelineRow is the wire form of one joined trace record.
type timelineRow struct {
	Visitor     bool   `json:"visitor"`
	Person      string `json:"person"`
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Mask        bool   `json:"mask"`
	Timestamp   string `json:"timestamp"`
	Image       string `json:"image"`
}

func toTimelineRows(entries []timeline.Entry) []timelineRow {
	rows := make([]timelineRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, timelineRow{
			Visitor:     e.Visitor,
			Person:      e.Person,
			Location:    e.Location,
			Temperature: e.Temperature,
			Mask:        e.Mask,
			Timestamp:   domain.DisplayTime(e.Timestamp),
			Image:       e.ImageBase64,
		})
	}
	return rows
}

// GetQueriedPersonDetails resolves the person behind an alert timestamp.
// POST /c19server/getqueriedpersondetails {"alertTimestamp": "..."}
func (h *TracingHandler) GetQueriedPersonDetails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AlertTimestamp string `json:"alertTimestamp"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	h.logger.Info("GetQueriedPersonDetails called", zap.String("alert_timestamp", req.AlertTimestamp))

	ts, err := domain.ParseTimestamp(req.AlertTimestamp)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	person, err := h.tracing.QueriedPersonDetails(r.Context(), ts)
	if err != nil {
		h.logger.Error("GetQueriedPersonDetails failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		QueriedPerson *tracing.PersonDetails `json:"queriedPerson"`
	}{ok(), person})
}

// GetPersonRecord returns the person's joined trace records since a start
// timestamp. POST /c19server/getpersonrecord
// {"alertTimestamp": "...", "startTimestamp": "..."}
func (h *TracingHandler) GetPersonRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AlertTimestamp string `json:"alertTimestamp"`
		StartTimestamp string `json:"startTimestamp"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	h.logger.Info("GetPersonRecord called",
		zap.String("alert_timestamp", req.AlertTimestamp),
		zap.String("start_timestamp", req.StartTimestamp),
	)

	alertTS, err := domain.ParseTimestamp(req.AlertTimestamp)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	startTS, err := domain.ParseTimestamp(req.StartTimestamp)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	entries, err := h.tracing.PersonTimeline(r.Context(), alertTS, startTS)
	if err != nil {
		h.logger.Error("GetPersonRecord failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	// Field name kept for compatibility with the deployed dashboards.
	writeJSON(w, http.StatusOK, struct {
		envelope
		PersonReords []timelineRow `json:"personReords"`
	}{ok(), toTimelineRows(entries)})
}

// GetPotentialView lists the distinct people seen at the alert's gate
// inside the window. POST /c19server/getpotentialview
func (h *TracingHandler) GetPotentialView(w http.ResponseWriter, r *http.Request) {
	alertTS, startTS, endTS, failed := h.readWindow(w, r, "GetPotentialView")
	if failed {
		return
	}

	people, err := h.tracing.PotentialView(r.Context(), alertTS, startTS, endTS)
	if err != nil {
		h.logger.Error("GetPotentialView failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		PotentialView []tracing.PersonRef `json:"potentialView"`
	}{ok(), people})
}

// GetPotentialContacts lists the individual sightings at the alert's gate
// inside the window. POST /c19server/getpotentialcontacts
func (h *TracingHandler) GetPotentialContacts(w http.ResponseWriter, r *http.Request) {
	alertTS, startTS, endTS, failed := h.readWindow(w, r, "GetPotentialContacts")
	if failed {
		return
	}

	contacts, err := h.tracing.PotentialContacts(r.Context(), alertTS, startTS, endTS)
	if err != nil {
		h.logger.Error("GetPotentialContacts failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		PotentialContacts []tracing.Contact `json:"potentialContacts"`
	}{ok(), contacts})
}

// GetAlertsByTimestamp returns a site's alert rows between two dates.
// POST /c19server/getalertsbytimestamp
// {"siteId": "1", "startTimestamp": "...", "endTimestamp": "..."}
func (h *TracingHandler) GetAlertsByTimestamp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteID         string `json:"siteId"`
		StartTimestamp string `json:"startTimestamp"`
		EndTimestamp   string `json:"endTimestamp"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	h.logger.Info("GetAlertsByTimestamp called",
		zap.String("site_id", req.SiteID),
		zap.String("start_timestamp", req.StartTimestamp),
		zap.String("end_timestamp", req.EndTimestamp),
	)

	siteID, err := domain.ParseID("siteId", req.SiteID)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	startTS, err := domain.ParseTimestamp(req.StartTimestamp)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	endTS, err := domain.ParseTimestamp(req.EndTimestamp)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	entries, err := h.tracing.AlertsBySite(r.Context(), siteID, startTS, endTS)
	if err != nil {
		h.logger.Error("GetAlertsByTimestamp failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		Alerts []timelineRow `json:"alerts"`
	}{ok(), toTimelineRows(entries)})
}

func (h *TracingHandler) readWindow(w http.ResponseWriter, r *http.Request, op string) (alertTS, startTS, endTS time.Time, failed bool) {
	var req struct {
		AlertTimestamp string `json:"alertTimestamp"`
		StartTimestamp string `json:"startTimestamp"`
		EndTimestamp   string `json:"endTimestamp"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return alertTS, startTS, endTS, true
	}
	h.logger.Info(op+" called",
		zap.String("alert_timestamp", req.AlertTimestamp),
		zap.String("start_timestamp", req.StartTimestamp),
		zap.String("end_timestamp", req.EndTimestamp),
	)

	var err error
	if alertTS, err = domain.ParseTimestamp(req.AlertTimestamp); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return alertTS, startTS, endTS, true
	}
	if startTS, err = domain.ParseTimestamp(req.StartTimestamp); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return alertTS, startTS, endTS, true
	}
	if endTS, err = domain.ParseTimestamp(req.EndTimestamp); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return alertTS, startTS, endTS, true
	}
	return alertTS, startTS, endTS, false
}
