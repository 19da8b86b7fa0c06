package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/meeting-copilot/pkg/config"
	pkgmw "github.com/johnquangdev/meeting-copilot/pkg/middleware"
)

// Handlers groups every HTTP handler. Routes of a nil handler are either
// left out or answer 501.
type Handlers struct {
	Auth        *Auth
	Meeting     *Meeting
	Recording   *Recording
	Transcript  *Transcript
	AI          *AIController
	Notes       *Notes
	Invitations *Invitation
	Memories    *Memories
}

// Router holds all handlers
type Router struct {
	cfg      *config.Config
	handlers Handlers
	authMW   echo.MiddlewareFunc
	gatherer prometheus.Gatherer
	roles    pkgmw.MeetingRoles
}

// NewRouter creates a new router with all handlers. gatherer may be nil
// to skip /metrics.
func NewRouter(cfg *config.Config, handlers Handlers, authMW echo.MiddlewareFunc, gatherer prometheus.Gatherer) *Router {
	return &Router{
		cfg:      cfg,
		handlers: handlers,
		authMW:   authMW,
		gatherer: gatherer,
	}
}

// WithMeetingRoles restricts /meetings/:id routes to the owner and
// accepted invitees. Status changes and capture control stay owner-only.
func (rt *Router) WithMeetingRoles(roles pkgmw.MeetingRoles) *Router {
	rt.roles = roles
	return rt
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	if rt.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	rt.setupAuthRoutes(v1)

	protected := v1.Group("", rt.authMW)
	rt.setupCalendarRoutes(protected)
	rt.setupMeetingRoutes(protected)
	rt.setupInvitationRoutes(protected)
	rt.setupAIRoutes(protected)
}

// setupAuthRoutes configures authentication routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")
	a := rt.handlers.Auth

	if a != nil {
		authGroup.GET("/google/login", a.GoogleLogin)
		authGroup.GET("/google/callback", a.GoogleCallback)
		authGroup.POST("/refresh", a.RefreshToken)
		authGroup.POST("/logout", a.Logout)
		authGroup.GET("/me", a.Me, rt.authMW)
		authGroup.POST("/logout-all", a.LogoutAll, rt.authMW)
	} else {
		authGroup.GET("/google/login", rt.notImplemented)
		authGroup.GET("/google/callback", rt.notImplemented)
		authGroup.POST("/refresh", rt.notImplemented)
		authGroup.POST("/logout", rt.notImplemented)
		authGroup.GET("/me", rt.notImplemented)
	}
}

func (rt *Router) setupCalendarRoutes(g *echo.Group) {
	m := rt.handlers.Meeting
	cal := g.Group("/calendar")
	if m != nil {
		cal.GET("/events", m.ListEvents)
		cal.POST("/sync", m.SyncCalendar)
		return
	}
	cal.GET("/events", rt.notImplemented)
	cal.POST("/sync", rt.notImplemented)
}

// setupMeetingRoutes configures everything scoped to one meeting
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	h := rt.handlers
	meetings := g.Group("/meetings")
	if h.Meeting != nil {
		meetings.GET("", h.Meeting.ListMeetings)
	}

	var participant, owner []echo.MiddlewareFunc
	if rt.roles != nil {
		participant = append(participant, pkgmw.RequireMeetingParticipant(rt.roles))
		owner = append(owner, pkgmw.RequireMeetingOwner(rt.roles))
	}
	// GET /meetings/:id checks access itself since it may create an
	// invitee's copy on first access
	if h.Meeting != nil {
		meetings.GET("/:id", h.Meeting.GetMeeting)
		meetings.PATCH("/:id/status", h.Meeting.UpdateStatus, owner...)
	}

	m := meetings.Group("/:id", participant...)

	if r := h.Recording; r != nil {
		m.GET("/recording", r.Status)
		m.POST("/recording/start", r.Start, owner...)
		m.POST("/recording/audio", r.PushAudio, owner...)
		m.POST("/recording/stop", r.Stop, owner...)
	} else {
		m.POST("/recording/start", rt.notImplemented)
		m.POST("/recording/audio", rt.notImplemented)
		m.POST("/recording/stop", rt.notImplemented)
	}

	if t := h.Transcript; t != nil {
		m.GET("/transcript", t.Get)
		m.POST("/transcript", t.Append)
		m.GET("/transcript/stream", t.Stream)
		m.GET("/transcript/export", t.Export)
	}

	if ai := h.AI; ai != nil {
		m.GET("/summary", ai.GetSummary)
		m.POST("/summary", ai.GenerateSummary)
		m.GET("/chat", ai.GetChat)
		m.POST("/chat", ai.Ask)
		m.DELETE("/chat", ai.ClearChat)
	} else {
		m.GET("/summary", rt.notImplemented)
		m.POST("/summary", rt.notImplemented)
		m.GET("/chat", rt.notImplemented)
		m.POST("/chat", rt.notImplemented)
		m.DELETE("/chat", rt.notImplemented)
	}

	if n := h.Notes; n != nil {
		m.GET("/notes", n.List)
		m.POST("/notes", n.Create)
		m.PUT("/notes/:noteId", n.Update)
		m.DELETE("/notes/:noteId", n.Delete)
	}
}

func (rt *Router) setupInvitationRoutes(g *echo.Group) {
	inv := rt.handlers.Invitations
	if inv == nil {
		return
	}
	invitations := g.Group("/invitations")
	invitations.POST("", inv.Create)
	invitations.GET("/pending", inv.Pending)
	invitations.GET("/accepted", inv.Accepted)
	invitations.POST("/:id/accept", inv.Accept)
	invitations.POST("/:id/decline", inv.Decline)
}

func (rt *Router) setupAIRoutes(g *echo.Group) {
	if ai := rt.handlers.AI; ai != nil {
		g.POST("/ai/clean-segment", ai.CleanSegment)
	} else {
		g.POST("/ai/clean-segment", rt.notImplemented)
	}
	if m := rt.handlers.Memories; m != nil {
		g.GET("/memories", m.Search)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "production"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}
