package httpapi

import (
	"net/http"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"

	"go.uber.org/zap"
)

// NotificationConfigHandler manages the per-site alert recipient lists.
type NotificationConfigHandler struct {
	config repository.ConfigRepo
	logger *zap.Logger
}

func NewNotificationConfigHandler(config repository.ConfigRepo, logger *zap.Logger) *NotificationConfigHandler {
	return &NotificationConfigHandler{config: config, logger: logger}
}

// GetAlertConfigurations lists a site's SMS and email recipients.
// POST /c19server/getalertconfigurations {"siteId": "1"}
func (h *NotificationConfigHandler) GetAlertConfigurations(w http.ResponseWriter, r *http.Request) {
	siteID, failed := h.readSiteID(w, r, "GetAlertConfigurations")
	if failed {
		return
	}

	mobiles, err := h.config.AlertMobiles(r.Context(), siteID)
	if err != nil {
		h.logger.Error("GetAlertConfigurations failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	emails, err := h.config.AlertEmails(r.Context(), siteID)
	if err != nil {
		h.logger.Error("GetAlertConfigurations failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		Mobiles        []domain.AlertMobileNumber `json:"mobiles"`
		EmailAddresses []domain.AlertEmailAddress `json:"emailAddresses"`
	}{ok(), mobiles, emails})
}

// AddAlertMobile adds one SMS recipient to a site.
// POST /c19server/addalertmobile {"siteId": "1", "name": "...", "mobileNumber": "..."}
func (h *NotificationConfigHandler) AddAlertMobile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteID       string `json:"siteId"`
		Name         string `json:"name"`
		MobileNumber string `json:"mobileNumber"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	h.logger.Info("AddAlertMobile called", zap.String("site_id", req.SiteID))

	siteID, err := domain.ParseID("siteId", req.SiteID)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	if err := h.config.AddAlertMobile(r.Context(), siteID, req.Name, req.MobileNumber); err != nil {
		h.logger.Error("AddAlertMobile failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ok())
}

// DeleteAlertMobile removes one SMS recipient.
// POST /c19server/deletealertmobile {"id": "3"}
func (h *NotificationConfigHandler) DeleteAlertMobile(w http.ResponseWriter, r *http.Request) {
	id, failed := h.readID(w, r, "DeleteAlertMobile")
	if failed {
		return
	}
	if err := h.config.DeleteAlertMobile(r.Context(), id); err != nil {
		h.logger.Error("DeleteAlertMobile failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ok())
}

// AddAlertEmail adds one email recipient to a site.
// POST /c19server/addalertemail {"siteId": "1", "name": "...", "emailId": "..."}
func (h *NotificationConfigHandler) AddAlertEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteID  string `json:"siteId"`
		Name    string `json:"name"`
		EmailID string `json:"emailId"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	h.logger.Info("AddAlertEmail called", zap.String("site_id", req.SiteID))

	siteID, err := domain.ParseID("siteId", req.SiteID)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	if err := h.config.AddAlertEmail(r.Context(), siteID, req.Name, req.EmailID); err != nil {
		h.logger.Error("AddAlertEmail failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ok())
}

// DeleteAlertEmail removes one email recipient.
// POST /c19server/deletealertemail {"id": "3"}
func (h *NotificationConfigHandler) DeleteAlertEmail(w http.ResponseWriter, r *http.Request) {
	id, failed := h.readID(w, r, "DeleteAlertEmail")
	if failed {
		return
	}
	if err := h.config.DeleteAlertEmail(r.Context(), id); err != nil {
		h.logger.Error("DeleteAlertEmail failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ok())
}

func (h *NotificationConfigHandler) readSiteID(w http.ResponseWriter, r *http.Request, op string) (int, bool) {
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

func (h *NotificationConfigHandler) readID(w http.ResponseWriter, r *http.Request, op string) (int, bool) {
	var req struct {
		ID string `json:"id"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return 0, true
	}
	h.logger.Info(op+" called", zap.String("id", req.ID))

	id, err := domain.ParseID("id", req.ID)
	if err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return 0, true
	}
	return id, false
}
