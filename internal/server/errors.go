package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edgard/storebot/internal/admin"
	"github.com/edgard/storebot/internal/database"
)

// Error codes returned in the "code" field of admin API errors.
const (
	CodeValidation       = "VALIDATION"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeBotAlreadyLinked = "BOT_ALREADY_LINKED"
	CodeUpstreamTimeout  = "UPSTREAM_TIMEOUT"
	CodeNotConfigured    = "NOT_CONFIGURED"
	CodeBaseURLMissing   = "BASE_URL_MISSING"
	CodeShopNotFound     = "SHOP_NOT_FOUND"
	CodeWebhookFailed    = "WEBHOOK_FAILED"
	CodeInternal         = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps service errors to status codes. Unknown errors are
// answered with fallback so internals are not leaked.
func writeError(c *gin.Context, err error, fallbackCode, fallback string) {
	_ = c.Error(err)

	var vErr *admin.ValidationError
	status, resp := http.StatusInternalServerError, errorResponse{Error: fallback, Code: fallbackCode}
	switch {
	case errors.As(err, &vErr):
		status, resp = http.StatusBadRequest, errorResponse{Error: vErr.Message, Code: CodeValidation}
	case errors.Is(err, admin.ErrInvalidToken):
		status, resp = http.StatusBadRequest, errorResponse{Error: admin.ErrInvalidToken.Error(), Code: CodeInvalidToken}
	case errors.Is(err, admin.ErrBotAlreadyLinked):
		status, resp = http.StatusConflict, errorResponse{Error: admin.ErrBotAlreadyLinked.Error(), Code: CodeBotAlreadyLinked}
	case errors.Is(err, admin.ErrUpstreamTimeout):
		status, resp = http.StatusGatewayTimeout, errorResponse{Error: admin.ErrUpstreamTimeout.Error(), Code: CodeUpstreamTimeout}
	case errors.Is(err, admin.ErrNotConfigured):
		status, resp = http.StatusBadRequest, errorResponse{Error: admin.ErrNotConfigured.Error(), Code: CodeNotConfigured}
	case errors.Is(err, admin.ErrBaseURLMissing):
		status, resp = http.StatusServiceUnavailable, errorResponse{Error: admin.ErrBaseURLMissing.Error(), Code: CodeBaseURLMissing}
	case errors.Is(err, database.ErrShopNotFound):
		status, resp = http.StatusNotFound, errorResponse{Error: "Shop not found", Code: CodeShopNotFound}
	}

	c.AbortWithStatusJSON(status, resp)
}
