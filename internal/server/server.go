package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ledes.com/labportal/internal/config"
	"ledes.com/labportal/internal/datastore"
	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/middleware"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/database"
	"ledes.com/labportal/pkg/logger"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/ratelimiter"
	"ledes.com/labportal/pkg/response"
	"ledes.com/labportal/pkg/storage"
	"ledes.com/labportal/pkg/token"
	"ledes.com/labportal/pkg/validator"

	aboutHttp "ledes.com/labportal/internal/modules/about/delivery/http"
	aboutRepo "ledes.com/labportal/internal/modules/about/repository"
	aboutService "ledes.com/labportal/internal/modules/about/service"

	accountHttp "ledes.com/labportal/internal/modules/account/delivery/http"
	accountRepo "ledes.com/labportal/internal/modules/account/repository"
	accountService "ledes.com/labportal/internal/modules/account/service"

	authHttp "ledes.com/labportal/internal/modules/auth/delivery/http"
	authService "ledes.com/labportal/internal/modules/auth/service"

	projectHttp "ledes.com/labportal/internal/modules/project/delivery/http"
	projectRepo "ledes.com/labportal/internal/modules/project/repository"
	projectService "ledes.com/labportal/internal/modules/project/service"

	publicationHttp "ledes.com/labportal/internal/modules/publication/delivery/http"
	publicationRepo "ledes.com/labportal/internal/modules/publication/repository"
	publicationService "ledes.com/labportal/internal/modules/publication/service"

	referenceHttp "ledes.com/labportal/internal/modules/reference/delivery/http"
	referenceRepo "ledes.com/labportal/internal/modules/reference/repository"
	referenceService "ledes.com/labportal/internal/modules/reference/service"

	searchService "ledes.com/labportal/internal/modules/search/service"
)

// Dependencies are the external clients the server runs against. Redis and
// Search are optional.
type Dependencies struct {
	DB     *gorm.DB
	Images storage.ImageStorage
	Redis  *redis.Client
	Search meilisearch.ServiceManager
}

// NewDependencies builds the clients selected by cfg around an open database.
func NewDependencies(ctx context.Context, cfg *config.Config, db *gorm.DB) (Dependencies, error) {
	deps := Dependencies{DB: db}
	log := logger.FromContext(ctx)

	var err error
	if cfg.CloudinaryURL != "" {
		deps.Images, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryUploadFolder)
		log.Info("storing images on cloudinary")
	} else {
		deps.Images, err = storage.NewLocalStorage(cfg.UploadDir)
		log.WithField("dir", cfg.UploadDir).Info("storing images on local disk")
	}
	if err != nil {
		return deps, err
	}

	if cfg.RedisURL != "" {
		deps.Redis, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return deps, err
		}
	} else {
		log.Warn("REDIS_URL is not set, login throttling disabled")
	}

	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		deps.Search = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		log.Warn("MEILISEARCH_HOST is not set, search falls back to the database")
	}

	return deps, nil
}

type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	deps   Dependencies
}

func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	if err := validator.Register(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	db := deps.DB
	resolver := media.NewResolver(cfg.PublicUploadURL)
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	loginLimiter := ratelimiter.New(deps.Redis, "login", cfg.LoginRateLimit, cfg.LoginRateWindow)

	var index searchService.PublicationIndex
	if deps.Search != nil {
		index = searchService.NewMeiliSearchService(deps.Search)
	}

	accountRepository := accountRepo.NewAccountRepository(db)
	accountSvc := accountService.NewAccountService(accountRepository, deps.Images, resolver)
	accountHandler := accountHttp.NewAccountHandler(accountSvc)

	authSvc := authService.NewAuthService(accountRepository, tokens, loginLimiter, resolver)
	authHandler := authHttp.NewAuthHandler(authSvc, tokens, cfg.CookieSecure)

	projectSvc := projectService.NewProjectService(projectRepo.NewProjectRepository(db), datastore.NewTransactor(db), deps.Images, resolver)
	projectHandler := projectHttp.NewProjectHandler(projectSvc)

	publicationSvc := publicationService.NewPublicationService(publicationRepo.NewPublicationRepository(db), index, deps.Images, resolver)
	publicationHandler := publicationHttp.NewPublicationHandler(publicationSvc)

	aboutSvc := aboutService.NewAboutService(aboutRepo.NewAboutRepository(db), resolver)
	aboutHandler := aboutHttp.NewAboutHandler(aboutSvc)

	references := map[string]*referenceHttp.ReferenceHandler{
		"/link-types": referenceHttp.NewReferenceHandler(referenceService.NewReferenceService(
			referenceRepo.NewReferenceRepository[entity.LinkType](db),
			referenceService.Labels{Singular: "Tipo Vínculo", Plural: "Tipos Vínculo"})),
		"/role-types": referenceHttp.NewReferenceHandler(referenceService.NewReferenceService(
			referenceRepo.NewReferenceRepository[entity.RoleType](db),
			referenceService.Labels{Singular: "Tipo Papel", Plural: "Tipos Papel"})),
		"/project-status-types": referenceHttp.NewReferenceHandler(referenceService.NewReferenceService(
			referenceRepo.NewReferenceRepository[entity.ProjectStatusType](db),
			referenceService.Labels{Singular: "Tipo Situação Projeto", Plural: "Tipos Situação Projeto"})),
		"/project-categories": referenceHttp.NewReferenceHandler(referenceService.NewReferenceService(
			referenceRepo.NewReferenceRepository[entity.ProjectCategory](db),
			referenceService.Labels{Singular: "Tipo Projeto", Plural: "Tipos Projeto"})),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true

	setupCORS(router, cfg.Origins())

	router.Use(logger.Middleware())
	router.Use(response.Recovery())

	if cfg.CloudinaryURL == "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, apperror.NotFound("Recurso não encontrado."))
	})
	router.NoMethod(func(c *gin.Context) {
		response.Error(c, apperror.New(http.StatusMethodNotAllowed, "Método não permitido.", nil))
	})

	authMiddleware := middleware.NewAuthMiddleware(accountRepository, tokens)
	requireAuth := authMiddleware.RequireAuth()

	api := router.Group("/api")
	api.Use(authMiddleware.OptionalAuth())

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	users := api.Group("/users")
	{
		users.GET("", accountHandler.List)
		users.GET("/:id", accountHandler.Get)
		users.POST("", requireAuth, accountHandler.Create)
		users.PATCH("/:id", requireAuth, accountHandler.Update)
		users.DELETE("/:id", requireAuth, accountHandler.Delete)
	}

	projects := api.Group("/projects")
	{
		projects.GET("", projectHandler.List)
		projects.GET("/:id", projectHandler.Get)
		projects.POST("", requireAuth, projectHandler.Create)
		projects.PATCH("/:id", requireAuth, projectHandler.Update)
		projects.DELETE("/:id", requireAuth, projectHandler.Delete)
	}

	publications := api.Group("/publications")
	{
		publications.GET("", publicationHandler.List)
		publications.GET("/search", publicationHandler.Search)
		publications.GET("/:id", publicationHandler.Get)
		publications.POST("", requireAuth, publicationHandler.Create)
		publications.PATCH("/:id", requireAuth, publicationHandler.Update)
		publications.PATCH("/:id/featured", requireAuth, publicationHandler.SetFeatured)
		publications.PATCH("/:id/visibility", requireAuth, publicationHandler.SetVisibility)
		publications.DELETE("/:id", requireAuth, publicationHandler.Delete)
	}

	for path, handler := range references {
		handler.Register(api.Group(path), requireAuth)
	}

	about := api.Group("/configuracao-sobre-nos")
	{
		about.GET("", aboutHandler.Get)
		about.PATCH("", requireAuth, aboutHandler.Update)
	}

	return &Server{cfg: cfg, engine: router, deps: deps}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Default().WithField("port", s.cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if s.deps.Redis != nil {
		_ = s.deps.Redis.Close()
	}
	return nil
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
