package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/response"
)

type backupService interface {
	RunOnce(ctx context.Context) (*models.BackupInfo, error)
	List() ([]string, error)
}

// BackupHandler lets administrators trigger and inspect backups.
type BackupHandler struct {
	backups backupService
}

// NewBackupHandler constructs the handler.
func NewBackupHandler(backups backupService) *BackupHandler {
	return &BackupHandler{backups: backups}
}

// Create godoc
// @Summary Write a backup now
// @Tags Backups
// @Produce json
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /backups [post]
func (h *BackupHandler) Create(c *gin.Context) {
	info, err := h.backups.RunOnce(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, info)
}

// List godoc
// @Summary List backups
// @Tags Backups
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /backups [get]
func (h *BackupHandler) List(c *gin.Context) {
	names, err := h.backups.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, names, nil)
}
