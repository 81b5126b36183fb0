package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpmw "github.com/johnquangdev/post-meeting-agent/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/post-meeting-agent/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	meetingHandler   *Meeting
	actionHandler    *Action
	artifactsHandler *Artifacts
}

// NewRouter creates a new router with all handlers. artifacts may be nil
// when storage is disabled.
func NewRouter(cfg *config.Config, meeting *Meeting, action *Action, artifacts *Artifacts) *Router {
	return &Router{
		cfg:              cfg,
		meetingHandler:   meeting,
		actionHandler:    action,
		artifactsHandler: artifacts,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")

	rt.setupMeetingRoutes(v1)
	rt.setupActionRoutes(v1)
	rt.setupCalendarRoutes(v1)
}

// setupMeetingRoutes configures transcript, audio and run history routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.POST("/analyze_text", rt.meetingHandler.AnalyzeText)
	meetings.POST("/act_on_text", rt.meetingHandler.ActOnText)
	meetings.POST("/ingest_audio", rt.meetingHandler.IngestAudio, httpmw.RequireUpload("file"))
	meetings.POST("/process", rt.meetingHandler.Process, httpmw.RequireUpload("file"))
	meetings.GET("/runs", rt.meetingHandler.ListRuns)
	meetings.GET("/runs/:id", rt.meetingHandler.GetRun)
}

// setupActionRoutes configures the explicit create routes
func (rt *Router) setupActionRoutes(g *echo.Group) {
	actions := g.Group("/actions")

	actions.POST("/task", rt.actionHandler.CreateTask)
	actions.POST("/event", rt.actionHandler.CreateEvent)
}

// setupCalendarRoutes configures mirrored artifact routes
func (rt *Router) setupCalendarRoutes(g *echo.Group) {
	artifacts := g.Group("/calendar/artifacts")

	if rt.artifactsHandler != nil {
		artifacts.GET("", rt.artifactsHandler.List)
		artifacts.GET("/url", rt.artifactsHandler.DownloadURL)
	} else {
		// Placeholder routes when storage is disabled
		artifacts.GET("", rt.notImplemented)
		artifacts.GET("/url", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not enabled",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Set STORAGE_ENABLED=true to mirror calendar artifacts",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := ""
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":          true,
		"status":      "ok",
		"environment": env,
		"tracker":     rt.cfg != nil && rt.cfg.TrackerConfigured(),
	})
}
