package httpapi

import (
	"net/http"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/summary"

	"go.uber.org/zap"
)

// SiteHandler serves the topology listing, summary and entrance-log
// endpoints.
type SiteHandler struct {
	summary *summary.Service
	logger  *zap.Logger
}

func NewSiteHandler(summary *summary.Service, logger *zap.Logger) *SiteHandler {
	return &SiteHandler{summary: summary, logger: logger}
}

// GetAllSites lists every site. POST /c19server/getallsites
func (h *SiteHandler) GetAllSites(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("GetAllSites called")

	sites, err := h.summary.Sites(r.Context())
	if err != nil {
		h.logger.Error("GetAllSites failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		Sites []domain.Site `json:"sites"`
	}{ok(), sites})
}

// GetSiteDevices lists the flattened device topology for one site.
// POST /c19server/getsitedevices {"siteId": "1"}
func (h *SiteHandler) GetSiteDevices(w http.ResponseWriter, r *http.Request) {
	siteID, failed := h.readSiteID(w, r, "GetSiteDevices")
	if failed {
		return
	}

	devices, err := h.summary.SiteDevices(r.Context(), siteID)
	if err != nil {
		h.logger.Error("GetSiteDevices failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		Devices []domain.SiteDeviceRow `json:"devices"`
	}{ok(), devices})
}

// GetSiteSummary returns today's counts for a site.
// POST /c19server/getsitesummary {"siteId": "1"}
func (h *SiteHandler) GetSiteSummary(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, "GetSiteSummary", "siteId", summary.ScopeSite)
}

// GetBuildingSummary returns today's counts for a building.
// POST /c19server/getbuildingsummary {"buildingId": "1"}
func (h *SiteHandler) GetBuildingSummary(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, "GetBuildingSummary", "buildingId", summary.ScopeBuilding)
}

// GetFloorSummary returns today's counts for a floor.
// POST /c19server/getfloorsummary {"floorId": "1"}
func (h *SiteHandler) GetFloorSummary(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, "GetFloorSummary", "floorId", summary.ScopeFloor)
}

// GetGateSummary returns today's counts for a gate.
// POST /c19server/getgatesummary {"gateId": "1"}
func (h *SiteHandler) GetGateSummary(w http.ResponseWriter, r *http.Request) {
	h.serveSummary(w, r, "GetGateSummary", "gateId", summary.ScopeGate)
}

// entranceRow is the wire form of one entrance-log line. The dashboards
// read dateTime/captured here rather than timestamp/image.
type entranceRow struct {
	Visitor     bool   `json:"visitor"`
	Person      string `json:"person"`
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Mask        bool   `json:"mask"`
	DateTime    string `json:"dateTime"`
	Captured    string `json:"captured"`
}

// GetEntranceLogForToday returns today's entrance log for a site.
// POST /c19server/getentrancelogfortoday {"siteId": "1"}
func (h *SiteHandler) GetEntranceLogForToday(w http.ResponseWriter, r *http.Request) {
	siteID, failed := h.readSiteID(w, r, "GetEntranceLogForToday")
	if failed {
		return
	}

	entries, err := h.summary.EntranceLog(r.Context(), siteID)
	if err != nil {
		h.logger.Error("GetEntranceLogForToday failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	rows := make([]entranceRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, entranceRow{
			Visitor:     e.Visitor,
			Person:      e.Person,
			Location:    e.Location,
			Temperature: e.Temperature,
			Mask:        e.Mask,
			DateTime:    domain.DisplayTime(e.Timestamp),
			Captured:    e.ImageBase64,
		})
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		EntranceLogForToday []entranceRow `json:"entranceLogForToday"`
	}{ok(), rows})
}

func (h *SiteHandler) serveSummary(w http.ResponseWriter, r *http.Request, op, idField string, scope summary.Scope) {
	var req struct {
		SiteID     string `json:"siteId"`
		BuildingID string `json:"buildingId"`
		FloorID    string `json:"floorId"`
		GateID     string `json:"gateId"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	var raw string
	switch scope {
	case summary.ScopeSite:
		raw = req.SiteID
	case summary.ScopeBuilding:
		raw = req.BuildingID
	case summary.ScopeFloor:
		raw = req.FloorID
	case summary.ScopeGate:
		raw = req.GateID
	}
	h.logger.Info(op+" called", zap.String(idField, raw))

	scopeID, err := domain.ParseID(idField, raw)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	counts, err := h.summary.Summarize(r.Context(), scope, scopeID)
	if err != nil {
		h.logger.Error(op+" failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		*summary.Summary
	}{ok(), counts})
}

func (h *SiteHandler) readSiteID(w http.ResponseWriter, r *http.Request, op string) (int, bool) {
	var req struct {
		SiteID string `json:"siteId"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return 0, true
	}
	h.logger.Info(op+" called", zap.String("site_id", req.SiteID))

	siteID, err := domain.ParseID("siteId", req.SiteID)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return 0, true
	}
	return siteID, false
}
