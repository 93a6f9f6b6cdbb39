package main

import (
	"context"
	"log"
	"net/http"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	auth "github.com/frc-scouting/scout-sync/pkg/auth"
	"github.com/frc-scouting/scout-sync/pkg/config"
	"github.com/frc-scouting/scout-sync/pkg/logger"
	"github.com/frc-scouting/scout-sync/pkg/metrics"

	"github.com/frc-scouting/scout-sync/repos/blob"
	"github.com/frc-scouting/scout-sync/repos/records"
	resend "github.com/frc-scouting/scout-sync/repos/resend"
	"github.com/frc-scouting/scout-sync/repos/store"
	"github.com/frc-scouting/scout-sync/repos/tba"

	admin "github.com/frc-scouting/scout-sync/services/admin"
	analysis "github.com/frc-scouting/scout-sync/services/analysis"
	entries "github.com/frc-scouting/scout-sync/services/entries"
	forms "github.com/frc-scouting/scout-sync/services/forms"
	profiles "github.com/frc-scouting/scout-sync/services/profiles"
	reference "github.com/frc-scouting/scout-sync/services/reference"
	sync "github.com/frc-scouting/scout-sync/services/sync"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.Firebase.CredentialsJSON)))
	}

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.Firebase.ProjectID,
		StorageBucket: cfg.Firebase.StorageBucket,
	}, opts...)
	if err != nil {
		zapLogger.Fatal("error initializing app", zap.Error(err))
	}
	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		zapLogger.Fatal("error initializing auth client", zap.Error(err))
	}

	var recordStore store.Store
	var uploader blob.Uploader
	switch cfg.App.Store {
	case config.StoreMemory:
		zapLogger.Warn("Using in-memory store, data is lost on restart")
		recordStore = store.NewMemoryStore()
		uploader = blob.NewMemoryStorage(cfg.Firebase.StorageBucket)
	default:
		firestoreClient, err := firestore.NewClient(ctx, cfg.Firebase.ProjectID, opts...)
		if err != nil {
			zapLogger.Fatal("Failed to create Firestore client", zap.Error(err))
		}
		defer firestoreClient.Close()
		recordStore = store.NewFirestoreStore(firestoreClient, zapLogger)

		photos, err := blob.NewFirebaseStorage(ctx, firebaseApp, cfg.Firebase.StorageBucket)
		if err != nil {
			zapLogger.Fatal("Failed to create storage client", zap.Error(err))
		}
		uploader = photos
	}

	repo := records.NewRepository(recordStore, zapLogger)
	tbaClient := tba.NewClient(cfg.TBA.BaseURL, cfg.TBA.AuthKey)
	resendService := resend.NewService(cfg.Mail.ResendKey, cfg.Mail.From)

	referenceService := reference.NewReferenceService(repo, cfg.ReferenceCacheTTL, zapLogger)
	syncService := sync.NewSyncService(repo, tbaClient, referenceService, zapLogger)
	formsService := forms.NewFormsService(repo, zapLogger)
	entriesService := entries.NewEntriesService(repo, uploader, zapLogger)
	analysisService := analysis.NewAnalysisService(repo, referenceService, zapLogger)
	adminService := admin.NewAdminService(repo, resendService, zapLogger)
	profilesService := profiles.NewProfilesService(repo, syncService, zapLogger)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.App.CORSHosts
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Access-Control-Allow-Origin"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(zapLogger))
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	requireUser := auth.AuthMiddleware(authClient)

	formsRouter := router.Group("/forms/v1")
	formsRouter.Use(requireUser)

	entriesRouter := router.Group("/entries/v1")
	entriesRouter.Use(auth.OptionalAuthMiddleware(authClient))

	analysisRouter := router.Group("/analysis/v1")
	analysisRouter.Use(requireUser)

	adminRouter := router.Group("/admin/v1")
	adminRouter.Use(requireUser)

	syncRouter := router.Group("/sync/v1")
	syncRouter.Use(requireUser)

	profilesRouter := router.Group("/profiles/v1")
	profilesRouter.Use(requireUser)

	referenceRouter := router.Group("/reference/v1")

	forms.NewHTTPHandler(forms.HTTPOptions{
		Service: formsService,
		Router:  formsRouter,
		Logger:  zapLogger,
	})

	entries.NewHTTPHandler(entries.HTTPOptions{
		Service: entriesService,
		Router:  entriesRouter,
		Logger:  zapLogger,
	})

	analysis.NewHTTPHandler(analysis.HTTPOptions{
		Service: analysisService,
		Router:  analysisRouter,
		Logger:  zapLogger,
	})

	admin.NewHTTPHandler(admin.HTTPOptions{
		Service: adminService,
		Router:  adminRouter,
		Logger:  zapLogger,
	})

	sync.NewHTTPHandler(sync.HTTPOptions{
		Service: syncService,
		Router:  syncRouter,
		Logger:  zapLogger,
	})

	profiles.NewHTTPHandler(profiles.HTTPOptions{
		Service: profilesService,
		Router:  profilesRouter,
		Logger:  zapLogger,
	})

	reference.NewHTTPHandler(reference.HTTPOptions{
		Service: referenceService,
		Router:  referenceRouter,
	})

	zapLogger.Info("Starting server", zap.String("port", cfg.App.Port), zap.String("store", string(cfg.App.Store)))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		zapLogger.Fatal("Server stopped", zap.Error(err))
	}
}
