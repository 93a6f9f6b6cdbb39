package analysis

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/auth"
	"github.com/frc-scouting/scout-sync/pkg/respond"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Analysis interface {
	Metrics(ctx context.Context, q Query) (*MetricsResponse, error)
	TeamReport(ctx context.Context, q Query) (*TeamReport, error)
	Leaderboard(ctx context.Context, q Query) (*LeaderboardResponse, error)
	Scouts(ctx context.Context, q Query) (*ScoutsResponse, error)
	Series(ctx context.Context, q Query) (*SeriesResponse, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Analysis

	// The router instance to configure the HTTP routes.
	Router Router

	Logger *zap.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/metrics", h.metricsHandler)
	r.GET("/team/:team", h.teamHandler)
	r.GET("/leaderboard", h.leaderboardHandler)
	r.GET("/scouts", h.scoutsHandler)
	r.GET("/series", h.seriesHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (s *httpHandler) metricsHandler(c *gin.Context) {
	q, ok := query(c)
	if !ok {
		return
	}
	resp, err := s.Service.Metrics(c, q)
	if err != nil {
		respond.Error(c, s.Logger, "classify metrics", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *httpHandler) teamHandler(c *gin.Context) {
	q, ok := query(c)
	if !ok {
		return
	}
	team, err := strconv.Atoi(c.Param("team"))
	if err != nil || team <= 0 {
		respond.BadRequest(c, "invalid team number")
		return
	}
	q.Team = team

	resp, err := s.Service.TeamReport(c, q)
	if err != nil {
		respond.Error(c, s.Logger, "build team report", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *httpHandler) leaderboardHandler(c *gin.Context) {
	q, ok := query(c)
	if !ok {
		return
	}
	resp, err := s.Service.Leaderboard(c, q)
	if err != nil {
		respond.Error(c, s.Logger, "build leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *httpHandler) scoutsHandler(c *gin.Context) {
	q, ok := query(c)
	if !ok {
		return
	}
	resp, err := s.Service.Scouts(c, q)
	if err != nil {
		respond.Error(c, s.Logger, "rank scouts", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *httpHandler) seriesHandler(c *gin.Context) {
	q, ok := query(c)
	if !ok {
		return
	}
	resp, err := s.Service.Series(c, q)
	if err != nil {
		respond.Error(c, s.Logger, "build series", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// query reads the shared scope parameters. The metric may be given as
// either "metric" or "key".
func query(c *gin.Context) (Query, bool) {
	purpose, err := scouting.ParsePurpose(c.Query("purpose"))
	if err != nil {
		respond.BadRequest(c, err.Error())
		return Query{}, false
	}
	q := Query{
		Scope:     scouting.ParseScope(c.Query("scope")),
		EventCode: c.Query("event"),
		Purpose:   purpose,
		Metric:    c.Query("metric"),
	}
	if q.Metric == "" {
		q.Metric = c.Query("key")
	}
	if raw := c.Query("team"); raw != "" {
		team, err := strconv.Atoi(raw)
		if err != nil {
			respond.BadRequest(c, "invalid team number")
			return Query{}, false
		}
		q.Team = team
	}
	if user, ok := auth.UserFromContext(c); ok {
		q.ViewerID = user.ID
		q.ViewerEmail = user.Email
	}
	return q, true
}
