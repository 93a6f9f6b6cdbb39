package entries

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

// maxPhotoUpload caps the multipart form held in memory.
const maxPhotoUpload = 32 << 20

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Entries interface {
	Form(ctx context.Context, season int, purpose scouting.FormPurpose, eventCode string) (scouting.Collector, error)
	Submit(ctx context.Context, purpose scouting.FormPurpose, req SubmitRequest, submitter scouting.Identity) (*SubmitResponse, error)
	UploadPhotos(ctx context.Context, eventCode string, team int, photos []Photo) ([]string, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Entries

	// The router instance to configure the HTTP routes.
	Router Router

	Logger *zap.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/form/:season/:purpose", h.formHandler)
	r.POST("/match", h.submitHandler(scouting.PurposeMatch))
	r.POST("/pit", h.submitHandler(scouting.PurposePit))
	r.POST("/pit/photos", h.photosHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (s *httpHandler) formHandler(c *gin.Context) {
	season, err := strconv.Atoi(c.Param("season"))
	if err != nil || season <= 0 {
		respond.BadRequest(c, "invalid season")
		return
	}
	purpose, err := scouting.ParsePurpose(c.Param("purpose"))
	if err != nil {
		respond.BadRequest(c, err.Error())
		return
	}

	collector, err := s.Service.Form(c, season, purpose, c.Query("event"))
	if err != nil {
		respond.Error(c, s.Logger, "load form", err)
		return
	}
	c.JSON(http.StatusOK, collector)
}

func (s *httpHandler) submitHandler(purpose scouting.FormPurpose) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request SubmitRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			respond.BadRequest(c, err.Error())
			return
		}

		resp, err := s.Service.Submit(c, purpose, request, submitter(c))
		if err != nil {
			respond.Error(c, s.Logger, "submit entry", err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func (s *httpHandler) photosHandler(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxPhotoUpload); err != nil {
		respond.BadRequest(c, "invalid multipart form")
		return
	}
	team, _ := strconv.Atoi(c.PostForm("team_number"))

	var photos []Photo
	for _, fh := range c.Request.MultipartForm.File["photos"] {
		f, err := fh.Open()
		if err != nil {
			respond.BadRequest(c, "unreadable photo "+fh.Filename)
			return
		}
		defer f.Close()
		photos = append(photos, Photo{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f})
	}
	if len(photos) == 0 {
		respond.BadRequest(c, "no photos in request")
		return
	}

	urls, err := s.Service.UploadPhotos(c, c.PostForm("event_code"), team, photos)
	if err != nil {
		respond.Error(c, s.Logger, "upload photos", err)
		return
	}
	c.JSON(http.StatusOK, PhotosResponse{URLs: urls})
}

// submitter identifies the signed-in user. Anonymous submissions carry no
// submitter.
func submitter(c *gin.Context) scouting.Identity {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return scouting.Identity{}
	}
	name := user.Name
	if name == "" {
		name = user.Email
	}
	return scouting.Identity{SubmitterID: user.ID, SubmitterName: name}
}
