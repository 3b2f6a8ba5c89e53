package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-vault/internal/model"
)

func (s *Server) handleGetSettings(c *gin.Context) {
	doc, err := s.settings.Get(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var doc model.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		badRequest(c)
		return
	}

	settings, err := s.settings.Update(c.Request.Context(), doc)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings.SettingsData)
}
