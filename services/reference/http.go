package reference

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frc-scouting/scout-sync/pkg/scouting"
	timehelper "github.com/frc-scouting/scout-sync/pkg/timeHelper"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Reference interface {
	TeamInfo(ctx context.Context, numbers []int) map[int]scouting.Team
	ListEvents(ctx context.Context, season int) ([]scouting.Event, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Reference

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/events", h.eventsHandler)
	r.GET("/teams", h.teamsHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (s *httpHandler) eventsHandler(c *gin.Context) {
	season := timehelper.CurrentSeason(time.Now())
	if raw := c.Query("season"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid season"})
			c.Abort()
			return
		}
		season = parsed
	}

	events, err := s.Service.ListEvents(c, season)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}
	if events == nil {
		events = []scouting.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"season": season, "events": events})
}

func (s *httpHandler) teamsHandler(c *gin.Context) {
	var numbers []int
	for _, part := range strings.Split(c.Query("numbers"), ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && n > 0 {
			numbers = append(numbers, n)
		}
	}
	teams := s.Service.TeamInfo(c, numbers)

	out := make([]scouting.Team, 0, len(teams))
	for _, n := range numbers {
		if t, ok := teams[n]; ok {
			out = append(out, t)
			delete(teams, n)
		}
	}
	c.JSON(http.StatusOK, gin.H{"teams": out})
}
