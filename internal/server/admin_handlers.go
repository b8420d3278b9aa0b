package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edgard/storebot/internal/auth"
	"github.com/edgard/storebot/internal/database"
)

type putTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type banRequest struct {
	Banned *bool `json:"banned" binding:"required"`
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ownerShopID resolves the caller's shop: the shopId claim when present,
// otherwise the shop owned by the caller.
func (s *Server) ownerShopID(c *gin.Context) (string, bool) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Code: "UNAUTHORIZED"})
		return "", false
	}
	if claims.ShopID != "" {
		return claims.ShopID, true
	}
	if s.deps.Owners == nil {
		writeError(c, database.ErrShopNotFound, CodeShopNotFound, "Shop not found")
		return "", false
	}
	shopID, err := s.deps.Owners.FindShopIDByOwner(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err, CodeInternal, "Internal Server Error")
		return "", false
	}
	return shopID, true
}

func (s *Server) handlePutToken(c *gin.Context) {
	var req putTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "Token is required", Code: CodeValidation})
		return
	}
	shopID, ok := s.ownerShopID(c)
	if !ok {
		return
	}

	res, err := s.deps.Admin.PutToken(c.Request.Context(), shopID, req.Token)
	if err != nil {
		writeError(c, err, CodeInternal, "Internal Server Error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bot token saved successfully",
		"bot":     botIdentity{ID: res.BotID, Username: res.Username, Name: res.Name},
	})
}

func (s *Server) handleRegisterWebhook(c *gin.Context) {
	shopID, ok := s.ownerShopID(c)
	if !ok {
		return
	}

	res, err := s.deps.Admin.RegisterWebhook(c.Request.Context(), shopID)
	if err != nil {
		writeError(c, err, CodeWebhookFailed, "Failed to set webhook: "+err.Error())
		return
	}

	var warning any
	if res.Warning != "" {
		warning = res.Warning
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": res.Message,
		"warning": warning,
		"active":  res.Active,
		"bot":     identityFromUser(res.Bot),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	shopID, ok := s.ownerShopID(c)
	if !ok {
		return
	}

	st, err := s.deps.Admin.Status(c.Request.Context(), shopID)
	if err != nil {
		writeError(c, err, CodeInternal, "Internal Server Error")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleDeleteToken(c *gin.Context) {
	shopID, ok := s.ownerShopID(c)
	if !ok {
		return
	}

	if err := s.deps.Admin.Unlink(c.Request.Context(), shopID); err != nil {
		writeError(c, err, CodeInternal, "Internal Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bot unlinked"})
}

func (s *Server) handleBan(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "banned must be a boolean", Code: CodeValidation})
		return
	}
	shopID := c.Param("shopId")

	if err := s.deps.Admin.SetBanned(c.Request.Context(), shopID, *req.Banned); err != nil {
		writeError(c, err, CodeInternal, "Internal Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": shopID, "isBanned": *req.Banned})
}

func (s *Server) handleSetActive(c *gin.Context) {
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "active must be a boolean", Code: CodeValidation})
		return
	}
	shopID := c.Param("shopId")

	if err := s.deps.Admin.SetActive(c.Request.Context(), shopID, *req.Active); err != nil {
		writeError(c, err, CodeInternal, "Internal Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": shopID, "isActive": *req.Active})
}
