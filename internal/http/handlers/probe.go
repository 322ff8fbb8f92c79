package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
	"github.com/yungbote/coursekeeper-backend/internal/services"
)

type ProbeHandler struct {
	log          *logger.Logger
	probeService services.ProbeService
}

func NewProbeHandler(log *logger.Logger, probeService services.ProbeService) *ProbeHandler {
	return &ProbeHandler{
		log:          log.With("handler", "ProbeHandler"),
		probeService: probeService,
	}
}

// TestApify writes the probe envelope as is: 200 on success, 500 otherwise.
func (h *ProbeHandler) TestApify(c *gin.Context) {
	res, err := h.probeService.Check(c.Request.Context())
	if err != nil {
		h.log.Error("Credential probe failed", "error", err)
		c.JSON(http.StatusInternalServerError, res)
		return
	}
	c.JSON(http.StatusOK, res)
}
