// Package api exposes the review workflow over HTTP for the dashboard:
// property listing and detail, status updates, migration task visibility
// and requeue, and the progress stats endpoint.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/internal/migration"
)

// Server serves the review API.
type Server struct {
	reviews *catalog.Service
	queue   migration.Queue
	log     *logrus.Logger
	engine  *gin.Engine
}

// NewServer builds a server and registers its routes.
func NewServer(reviews *catalog.Service, queue migration.Queue, log *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		reviews: reviews,
		queue:   queue,
		log:     log,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

// Handler returns the HTTP handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	s.log.WithField("addr", addr).Info("Review API listening")
	return s.engine.Run(addr)
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.GET("/properties", s.listProperties)
		api.GET("/properties/:id", s.getProperty)
		api.PATCH("/properties/:id/status", s.updateStatus)
		api.GET("/stats", s.getStats)
		api.GET("/tasks", s.listTasks)
		api.POST("/tasks/:id/requeue", s.requeueTask)
	}
}

func (s *Server) listProperties(c *gin.Context) {
	filter := catalog.ListFilter{
		Status: catalog.Status(c.Query("status")),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 30),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + string(filter.Status)})
		return
	}

	props, total, err := s.reviews.Store().List(c.Request.Context(), filter)
	if err != nil {
		s.internalError(c, "list properties", err)
		return
	}
	if props == nil {
		props = []*catalog.Property{}
	}
	c.JSON(http.StatusOK, gin.H{
		"properties": props,
		"total":      total,
		"page":       filter.Page,
		"limit":      filter.Limit,
	})
}

func (s *Server) getProperty(c *gin.Context) {
	id := c.Param("id")

	p, err := s.reviews.Store().Get(c.Request.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		// fall back to the legacy id so old dashboard links keep working
		if wpID, convErr := strconv.ParseInt(id, 10, 64); convErr == nil {
			p, err = s.reviews.Store().GetBySourceID(c.Request.Context(), wpID)
		}
	}
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}
	if err != nil {
		s.internalError(c, "get property", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type statusRequest struct {
	Status     string `json:"status" binding:"required"`
	ReviewedBy string `json:"reviewedBy"`
	Notes      string `json:"notes"`
}

func (s *Server) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	p, err := s.reviews.UpdateStatus(c.Request.Context(), c.Param("id"), catalog.ReviewInput{
		Status:     catalog.Status(req.Status),
		ReviewedBy: req.ReviewedBy,
		Notes:      req.Notes,
	})

	var illegal *catalog.IllegalTransitionError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.Is(err, catalog.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &illegal), errors.Is(err, catalog.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.internalError(c, "update status", err)
	}
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.reviews.Stats(c.Request.Context())
	if err != nil {
		s.internalError(c, "compute stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) listTasks(c *gin.Context) {
	status := migration.TaskStatus(c.Query("status"))

	tasks, err := s.queue.List(c.Request.Context(), status)
	if err != nil {
		s.internalError(c, "list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []*migration.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "total": len(tasks)})
}

func (s *Server) requeueTask(c *gin.Context) {
	task, err := s.queue.Requeue(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, task)
	case errors.Is(err, migration.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, migration.ErrNotFailed), errors.Is(err, migration.ErrTaskActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.internalError(c, "requeue task", err)
	}
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.log.WithField("path", c.FullPath()).Errorf("%s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
