package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-vault/internal/model"
	"task-vault/internal/service"
)

type toggleRequest struct {
	IsCompleted bool `json:"is_completed"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.ListTasks(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = make([]model.Task, 0)
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleTaskCounts(c *gin.Context) {
	counts, err := s.tasks.Counts(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var input service.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c)
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), input)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.tasks.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var patch service.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}

	task, err := s.tasks.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleToggleTask(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	task, err := s.tasks.ToggleComplete(c.Request.Context(), c.Param("id"), req.IsCompleted)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
