package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleGetConfig handles GET /api/v1/config
// Secrets are masked.
func (h *Handlers) HandleGetConfig(c *gin.Context) {
	if h.manager == nil {
		fail(c, http.StatusNotFound, "configuration not available")
		return
	}
	success(c, h.manager.ToJSON())
}
