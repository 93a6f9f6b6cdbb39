package forms

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/respond"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	DELETE(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Forms interface {
	GetSchema(ctx context.Context, season int, purpose scouting.FormPurpose) (*scouting.FormSchema, error)
	SaveSchema(ctx context.Context, season int, purpose scouting.FormPurpose, fields []scouting.FieldDefinition) (*scouting.FormSchema, error)
	AddField(ctx context.Context, season int, purpose scouting.FormPurpose, req AddFieldRequest) (*scouting.FormSchema, error)
	RemoveField(ctx context.Context, season int, purpose scouting.FormPurpose, id string) (*scouting.FormSchema, error)
	MoveField(ctx context.Context, season int, purpose scouting.FormPurpose, id string, dir scouting.Direction) (*scouting.FormSchema, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Forms

	// The router instance to configure the HTTP routes.
	Router Router

	Logger *zap.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/:season/:purpose", h.getSchemaHandler)
	r.PUT("/:season/:purpose", h.saveSchemaHandler)
	r.POST("/:season/:purpose/fields", h.addFieldHandler)
	r.DELETE("/:season/:purpose/fields/:id", h.removeFieldHandler)
	r.POST("/:season/:purpose/fields/:id/move", h.moveFieldHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (s *httpHandler) getSchemaHandler(c *gin.Context) {
	season, purpose, ok := pathParams(c)
	if !ok {
		return
	}

	schema, err := s.Service.GetSchema(c, season, purpose)
	if errors.Is(err, scouting.ErrSchemaAbsent) {
		c.JSON(http.StatusOK, SchemaResponse{Season: season, Purpose: purpose, Fields: []scouting.FieldDefinition{}})
		return
	}
	if err != nil {
		respond.Error(c, s.Logger, "load form template", err)
		return
	}
	c.JSON(http.StatusOK, toResponse(schema))
}

func (s *httpHandler) saveSchemaHandler(c *gin.Context) {
	season, purpose, ok := pathParams(c)
	if !ok {
		return
	}

	var request SaveSchemaRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}

	schema, err := s.Service.SaveSchema(c, season, purpose, request.Fields)
	if err != nil {
		respond.Error(c, s.Logger, "save form template", err)
		return
	}
	c.JSON(http.StatusOK, toResponse(schema))
}

func (s *httpHandler) addFieldHandler(c *gin.Context) {
	season, purpose, ok := pathParams(c)
	if !ok {
		return
	}

	var request AddFieldRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}

	schema, err := s.Service.AddField(c, season, purpose, request)
	if err != nil {
		respond.Error(c, s.Logger, "add field", err)
		return
	}
	c.JSON(http.StatusOK, toResponse(schema))
}

func (s *httpHandler) removeFieldHandler(c *gin.Context) {
	season, purpose, ok := pathParams(c)
	if !ok {
		return
	}

	schema, err := s.Service.RemoveField(c, season, purpose, c.Param("id"))
	if err != nil {
		respond.Error(c, s.Logger, "remove field", err)
		return
	}
	c.JSON(http.StatusOK, toResponse(schema))
}

func (s *httpHandler) moveFieldHandler(c *gin.Context) {
	season, purpose, ok := pathParams(c)
	if !ok {
		return
	}

	schema, err := s.Service.MoveField(c, season, purpose, c.Param("id"), scouting.Direction(c.Query("dir")))
	if err != nil {
		respond.Error(c, s.Logger, "move field", err)
		return
	}
	c.JSON(http.StatusOK, toResponse(schema))
}

func pathParams(c *gin.Context) (int, scouting.FormPurpose, bool) {
	season, err := strconv.Atoi(c.Param("season"))
	if err != nil || season <= 0 {
		respond.BadRequest(c, "invalid season")
		return 0, "", false
	}
	purpose, err := scouting.ParsePurpose(c.Param("purpose"))
	if err != nil {
		respond.BadRequest(c, err.Error())
		return 0, "", false
	}
	return season, purpose, true
}

func toResponse(schema *scouting.FormSchema) SchemaResponse {
	fields := schema.Fields
	if fields == nil {
		fields = []scouting.FieldDefinition{}
	}
	return SchemaResponse{Season: schema.Season, Purpose: schema.Purpose, Fields: fields, Saved: true}
}
