package sync

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/respond"
	timehelper "github.com/frc-scouting/scout-sync/pkg/timeHelper"
	"github.com/frc-scouting/scout-sync/repos/tba"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Sync interface {
	ImportEvents(ctx context.Context, season int) (int, error)
	ImportMatches(ctx context.Context, eventCode string) (int, error)
	ImportTeams(ctx context.Context, eventCode string) (int, int, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Sync

	// The router instance to configure the HTTP routes.
	Router Router

	Logger *zap.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/events", h.syncEventsHandler)
	r.POST("/events/:code/matches", h.syncMatchesHandler)
	r.POST("/events/:code/teams", h.syncTeamsHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (s *httpHandler) syncEventsHandler(c *gin.Context) {
	season := timehelper.CurrentSeason(time.Now())
	if raw := c.Query("season"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respond.BadRequest(c, "invalid season")
			return
		}
		season = parsed
	}

	n, err := s.Service.ImportEvents(c, season)
	if err != nil {
		s.fail(c, "import events", err)
		return
	}
	c.JSON(http.StatusOK, ImportResponse{Imported: n, Season: season})
}

func (s *httpHandler) syncMatchesHandler(c *gin.Context) {
	code := c.Param("code")
	n, err := s.Service.ImportMatches(c, code)
	if err != nil {
		s.fail(c, "import matches", err)
		return
	}
	c.JSON(http.StatusOK, ImportResponse{Imported: n, Event: code})
}

func (s *httpHandler) syncTeamsHandler(c *gin.Context) {
	code := c.Param("code")
	n, logos, err := s.Service.ImportTeams(c, code)
	if err != nil {
		s.fail(c, "import teams", err)
		return
	}
	c.JSON(http.StatusOK, ImportResponse{Imported: n, Event: code, Logos: logos})
}

// fail reports upstream API errors as a bad gateway with the upstream
// details, and a missing key as a server fault.
func (s *httpHandler) fail(c *gin.Context, op string, err error) {
	var apiErr *tba.APIError
	switch {
	case errors.As(err, &apiErr):
		s.Logger.Warn("Failed to "+op, zap.Int("status", apiErr.StatusCode), zap.String("body", apiErr.Body))
		c.JSON(http.StatusBadGateway, gin.H{"error": "schedule provider error", "status": apiErr.StatusCode, "details": apiErr.Body})
		c.Abort()
	case errors.Is(err, tba.ErrMissingKey):
		s.Logger.Error("Failed to "+op, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		c.Abort()
	default:
		respond.Error(c, s.Logger, op, err)
	}
}
