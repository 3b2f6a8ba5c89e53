package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-vault/internal/model"
)

type createBackupRequest struct {
	BackupName string `json:"backup_name"`
}

func (s *Server) handleListBackups(c *gin.Context) {
	backups, err := s.backups.ListBackups(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if backups == nil {
		backups = make([]model.Backup, 0)
	}
	c.JSON(http.StatusOK, backups)
}

func (s *Server) handleCreateBackup(c *gin.Context) {
	var req createBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	backup, err := s.backups.CreateBackup(c.Request.Context(), req.BackupName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, backup)
}

func (s *Server) handleImportBackup(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "backup file too large"})
			return
		}
		badRequest(c)
		return
	}

	backup, err := s.backups.ImportBackup(c.Request.Context(), data)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, backup)
}

func (s *Server) handleRestoreBackup(c *gin.Context) {
	if err := s.backups.RestoreBackup(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteBackup(c *gin.Context) {
	if err := s.backups.DeleteBackup(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExportBackup(c *gin.Context) {
	export, err := s.backups.ExportBackup(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	c.Data(http.StatusOK, export.ContentType, export.Content)
}
