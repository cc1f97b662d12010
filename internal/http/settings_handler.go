package httpapi

import (
	"net/http"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/repository"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/settings"

	"go.uber.org/zap"
)

// SettingsHandler serves the runtime-settings endpoints.
type SettingsHandler struct {
	settings *settings.Resolver
	topology repository.TopologyRepo
	logger   *zap.Logger
}

func NewSettingsHandler(settings *settings.Resolver, topology repository.TopologyRepo, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, topology: topology, logger: logger}
}

// GetTemperatureThreshold returns the effective threshold.
// POST /c19server/gettemperaturethreshold
func (h *SettingsHandler) GetTemperatureThreshold(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("GetTemperatureThreshold called")

	threshold, err := h.settings.TemperatureThreshold(r.Context())
	if err != nil {
		h.logger.Error("GetTemperatureThreshold failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		envelope
		TemperatureThreshold string `json:"temperatureThreshold"`
	}{ok(), domain.FormatTemperature(threshold)})
}

// SetTemperatureThreshold stores a new threshold and marks every device
// for a threshold re-push. POST /c19server/settemperaturethreshold
// {"threshold": "37.5"}
func (h *SettingsHandler) SetTemperatureThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Threshold string `json:"threshold"`
	}
	if err := readBodyJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	h.logger.Info("SetTemperatureThreshold called", zap.String("threshold", req.Threshold))

	if err := h.settings.SetTemperatureThreshold(r.Context(), req.Threshold); err != nil {
		h.logger.Error("SetTemperatureThreshold failed", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}
	if err := h.topology.ClearUpdatedThresholdFlags(r.Context()); err != nil {
		h.logger.Error("Failed to flag devices for threshold re-push", zap.Error(err))
		writeJSON(w, http.StatusOK, fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, ok())
}
