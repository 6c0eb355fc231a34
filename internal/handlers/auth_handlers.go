package handlers

import (
	"errors"
	"net/http"

	"fleet_ledger_backend/internal/services"
	"fleet_ledger_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler issues worker tokens to the messaging dispatcher. The
// dispatcher authenticates with a shared API key; workers never hold
// credentials of their own.
type AuthHandler struct {
	workerService services.WorkerService
	apiKeyHash    []byte
	adminIDs      map[int64]struct{}
}

// NewAuthHandler creates a new AuthHandler. apiKeyHash is the bcrypt hash of
// the dispatcher API key; adminIDs lists the worker ids granted admin routes.
func NewAuthHandler(ws services.WorkerService, apiKeyHash []byte, adminIDs []int64) *AuthHandler {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &AuthHandler{workerService: ws, apiKeyHash: apiKeyHash, adminIDs: admins}
}

// IssueTokenRequest carries the dispatcher API key plus the worker profile to
// register or refresh on first contact.
type IssueTokenRequest struct {
	APIKey      string  `json:"api_key" binding:"required"`
	WorkerID    int64   `json:"worker_id" binding:"required"`
	DisplayName string  `json:"display_name" binding:"required"`
	Username    *string `json:"username"`
}

// IssueToken verifies the dispatcher API key, upserts the worker profile and
// returns a worker-scoped access token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "IssueToken: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.apiKeyHash, []byte(req.APIKey)); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid API key.", ""))
		return
	}

	worker, err := h.workerService.Register(services.RegisterWorkerRequest{
		ID:          req.WorkerID,
		Username:    req.Username,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		utils.LogError(err, "IssueToken: Error from workerService.Register")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to register worker.", "Internal error"))
		}
		return
	}

	_, isAdmin := h.adminIDs[worker.ID]
	token, err := utils.GenerateAccessToken(worker.ID, worker.DisplayName, isAdmin)
	if err != nil {
		utils.LogError(err, "IssueToken: Failed to generate access token")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to issue token.", "Internal error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(utils.AccessTokenTTL.Seconds()),
		"worker":       worker,
		"is_admin":     isAdmin,
	})
}
