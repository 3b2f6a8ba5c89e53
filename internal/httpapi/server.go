// Package httpapi exposes tasks, settings and backups over a JSON HTTP API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"task-vault/internal/service"
)

const maxImportBytes = 10 << 20

// Server is the HTTP front end over the task, settings and backup services.
type Server struct {
	auth     *service.AuthService
	tasks    *service.TaskService
	settings *service.SettingsService
	backups  *service.BackupService
	logger   *log.Logger
	router   *gin.Engine
}

func NewServer(auth *service.AuthService, tasks *service.TaskService, settings *service.SettingsService, backups *service.BackupService, logger *log.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		auth:     auth,
		tasks:    tasks,
		settings: settings,
		backups:  backups,
		logger:   logger,
		router:   router,
	}

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)
	}

	authed := api.Group("", s.requireAuth())
	{
		authed.GET("/tasks", s.handleListTasks)
		authed.POST("/tasks", s.handleCreateTask)
		authed.GET("/tasks/counts", s.handleTaskCounts)
		authed.GET("/tasks/:id", s.handleGetTask)
		authed.PATCH("/tasks/:id", s.handleUpdateTask)
		authed.DELETE("/tasks/:id", s.handleDeleteTask)
		authed.POST("/tasks/:id/toggle", s.handleToggleTask)

		authed.GET("/settings", s.handleGetSettings)
		authed.PUT("/settings", s.handleUpdateSettings)

		authed.GET("/backups", s.handleListBackups)
		authed.POST("/backups", s.handleCreateBackup)
		authed.POST("/backups/import", s.handleImportBackup)
		authed.POST("/backups/:id/restore", s.handleRestoreBackup)
		authed.DELETE("/backups/:id", s.handleDeleteBackup)
		authed.GET("/backups/:id/export", s.handleExportBackup)
	}

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// NewHTTPServer wraps the handler with the listen address and timeouts.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}
