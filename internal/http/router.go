package httpapi

import (
	"net/http"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/hub"

	"go.uber.org/zap"
)

// Router is a thin wrapper around the standard library mux; the route
// surface is small enough that a third-party router buys nothing.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// handlePost registers a POST-only route; other methods get 405.
func (r *Router) handlePost(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	})
}

// RegisterTracingRoutes registers the contact-tracing endpoints.
func (r *Router) RegisterTracingRoutes(h *TracingHandler) {
	r.handlePost("/c19server/getqueriedpersondetails", h.GetQueriedPersonDetails)
	r.handlePost("/c19server/getpersonrecord", h.GetPersonRecord)
	r.handlePost("/c19server/getpotentialview", h.GetPotentialView)
	r.handlePost("/c19server/getpotentialcontacts", h.GetPotentialContacts)
	r.handlePost("/c19server/getalertsbytimestamp", h.GetAlertsByTimestamp)
}

// RegisterSiteRoutes registers the topology and summary endpoints.
func (r *Router) RegisterSiteRoutes(h *SiteHandler) {
	r.handlePost("/c19server/getallsites", h.GetAllSites)
	r.handlePost("/c19server/getsitedevices", h.GetSiteDevices)
	r.handlePost("/c19server/getsitesummary", h.GetSiteSummary)
	r.handlePost("/c19server/getbuildingsummary", h.GetBuildingSummary)
	r.handlePost("/c19server/getfloorsummary", h.GetFloorSummary)
	r.handlePost("/c19server/getgatesummary", h.GetGateSummary)
	r.handlePost("/c19server/getentrancelogfortoday", h.GetEntranceLogForToday)
}

// RegisterSettingsRoutes registers the runtime-settings endpoints.
func (r *Router) RegisterSettingsRoutes(h *SettingsHandler) {
	r.handlePost("/c19server/gettemperaturethreshold", h.GetTemperatureThreshold)
	r.handlePost("/c19server/settemperaturethreshold", h.SetTemperatureThreshold)
}

// RegisterNotificationRoutes registers the alert recipient endpoints.
func (r *Router) RegisterNotificationRoutes(h *NotificationConfigHandler) {
	r.handlePost("/c19server/getalertconfigurations", h.GetAlertConfigurations)
	r.handlePost("/c19server/addalertmobile", h.AddAlertMobile)
	r.handlePost("/c19server/deletealertmobile", h.DeleteAlertMobile)
	r.handlePost("/c19server/addalertemail", h.AddAlertEmail)
	r.handlePost("/c19server/deletealertemail", h.DeleteAlertEmail)
}

// RegisterHubRoutes registers the live event surface: the dashboard
// websocket and the device ingest endpoint.
func (r *Router) RegisterHubRoutes(h *hub.Hub) {
	r.mux.HandleFunc("/c19server/ws", h.ServeWS)
	r.handlePost("/c19server/deviceevent", func(w http.ResponseWriter, req *http.Request) {
		var event hub.DeviceEvent
		if err := readBodyJSON(req, &event); err != nil {
			writeJSON(w, http.StatusOK, fail(err.Error()))
			return
		}
		if err := h.Publish(req.Context(), event); err != nil {
			r.logger.Error("Device event rejected", zap.Error(err))
			writeJSON(w, http.StatusOK, fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, ok())
	})
}
