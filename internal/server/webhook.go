package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edgard/storebot/internal/dispatch"
)

const maxUpdateSize = 1 << 20

// handleWebhook translates a dispatch.Result into the provider response.
// Only rejections get a non-200 status.
func (s *Server) handleWebhook(c *gin.Context) {
	shopID := strings.TrimSpace(c.Param("shopId"))

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUpdateSize))
	if err != nil {
		s.logger.WarnContext(c.Request.Context(), "Failed to read webhook body", "shop_id", shopID, "error", err)
		body = nil
	}

	res := s.deps.Dispatcher.DispatchRaw(c.Request.Context(), shopID, body)
	if res.Err != nil {
		_ = c.Error(res.Err)
	}

	if res.Kind == dispatch.Rejected {
		c.JSON(res.StatusCode(), gin.H{"error": res.Message})
		return
	}

	resp := gin.H{"ok": true}
	if res.Message != "" {
		resp["message"] = res.Message
	}
	c.JSON(http.StatusOK, resp)
}
