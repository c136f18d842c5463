package handlers

import (
	"net/http"

	"github.com/kozaktomas/site-attendance/internal/ai"
	"github.com/kozaktomas/site-attendance/internal/attendance"
	"github.com/kozaktomas/site-attendance/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
	engine *attendance.Engine
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config, engine *attendance.Engine) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
		engine: engine,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Providers     []ProviderInfo `json:"providers"`
	Classifier    string         `json:"classifier,omitempty"`
	Usage         *ai.Usage      `json:"usage,omitempty"`
	RemoteStorage bool           `json:"remote_storage"`
	Alerts        bool           `json:"alerts"`
	AuthEnabled   bool           `json:"auth_enabled"`
}

// ProviderInfo represents information about a vision provider
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Get returns the active configuration and classifier usage
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	response := ConfigResponse{
		Providers: []ProviderInfo{
			{Name: "gemini", Available: h.config.Gemini.APIKey != ""},
			{Name: "openai", Available: h.config.OpenAI.Token != ""},
		},
		RemoteStorage: h.config.Storage.Enabled(),
		Alerts:        h.config.Telegram.Enabled(),
		AuthEnabled:   h.config.Auth.Enabled(),
	}

	if c := h.engine.Classifier(); c != nil {
		usage := c.GetUsage()
		response.Classifier = c.Name()
		response.Usage = &usage
	}

	respondJSON(w, http.StatusOK, response)
}
