package profiles

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/auth"
	"github.com/frc-scouting/scout-sync/pkg/respond"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Profiles interface {
	Get(ctx context.Context, user auth.User) (scouting.Profile, error)
	Update(ctx context.Context, user auth.User, request UpdateRequest) (scouting.Profile, error)
	Checkin(ctx context.Context, user auth.User, eventCode string) (*CheckinResponse, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Profiles

	// The router instance to configure the HTTP routes.
	Router Router

	Logger *zap.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/me", h.getHandler)
	r.PUT("/me", h.updateHandler)
	r.POST("/me/checkin", h.checkinHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (s *httpHandler) getHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := s.Service.Get(c, user)
	if err != nil {
		respond.Error(c, s.Logger, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *httpHandler) updateHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var request UpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	p, err := s.Service.Update(c, user, request)
	if err != nil {
		respond.Error(c, s.Logger, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *httpHandler) checkinHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var request CheckinRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	resp, err := s.Service.Checkin(c, user, request.EventCode)
	if err != nil {
		respond.Error(c, s.Logger, "check in", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func currentUser(c *gin.Context) (auth.User, bool) {
	user, ok := auth.UserFromContext(c)
	if !ok || user.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		c.Abort()
		return auth.User{}, false
	}
	return user, true
}
