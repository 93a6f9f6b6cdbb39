package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/respond"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	DELETE(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Admin interface {
	DeleteRecent(ctx context.Context, purposes []scouting.FormPurpose) (map[string]int, error)
	DeleteAll(ctx context.Context, purposes []scouting.FormPurpose) (map[string]int, error)
	Export(ctx context.Context, purpose scouting.FormPurpose, eventCode string) (string, []byte, int, error)
	MailExport(ctx context.Context, request MailExportRequest) (int, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Admin

	// The router instance to configure the HTTP routes.
	Router Router

	Logger *zap.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.DELETE("/entries/recent", h.deleteRecentHandler)
	r.DELETE("/entries", h.deleteAllHandler)
	r.GET("/export", h.exportHandler)
	r.POST("/export/mail", h.mailExportHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (s *httpHandler) deleteRecentHandler(c *gin.Context) {
	purposes, ok := purposesParam(c)
	if !ok {
		return
	}
	deleted, err := s.Service.DeleteRecent(c, purposes)
	if err != nil {
		respond.Error(c, s.Logger, "delete recent entries", err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Deleted: deleted})
}

func (s *httpHandler) deleteAllHandler(c *gin.Context) {
	purposes, ok := purposesParam(c)
	if !ok {
		return
	}
	deleted, err := s.Service.DeleteAll(c, purposes)
	if err != nil {
		respond.Error(c, s.Logger, "delete entries", err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Deleted: deleted})
}

func (s *httpHandler) exportHandler(c *gin.Context) {
	purpose, err := scouting.ParsePurpose(c.Query("purpose"))
	if err != nil {
		respond.BadRequest(c, err.Error())
		return
	}

	filename, data, _, err := s.Service.Export(c, purpose, c.Query("event"))
	if err != nil {
		respond.Error(c, s.Logger, "export entries", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *httpHandler) mailExportHandler(c *gin.Context) {
	var request MailExportRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}

	rows, err := s.Service.MailExport(c, request)
	if err != nil {
		respond.Error(c, s.Logger, "mail export", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "Export sent", "rows": rows})
}

// purposesParam reads ?purpose=. Without it both record kinds are affected.
func purposesParam(c *gin.Context) ([]scouting.FormPurpose, bool) {
	raw := c.Query("purpose")
	if raw == "" {
		return []scouting.FormPurpose{scouting.PurposeMatch, scouting.PurposePit}, true
	}
	p, err := scouting.ParsePurpose(raw)
	if err != nil {
		respond.BadRequest(c, err.Error())
		return nil, false
	}
	return []scouting.FormPurpose{p}, true
}
