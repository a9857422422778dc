package v1

import (
	"go-trades-backend/config"
	"go-trades-backend/internal/delivery/http/middleware"
	"go-trades-backend/internal/domain"
	"go-trades-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC              domain.AuthUsecase
	UserUC              domain.UserUsecase
	ProfileUC           domain.ProfileUsecase
	ApprenticeProfileUC domain.ApprenticeProfileUsecase
	JobUC               domain.JobUsecase
	ReviewUC            domain.ReviewUsecase
	ListingUC           domain.ListingUsecase
	OpportunityUC       domain.OpportunityUsecase
	NotificationUC      domain.NotificationUsecase
	CatalogUC           domain.CatalogUsecase
	ContactUC           domain.ContactUsecase
	HealthUC            usecase.HealthUsecase
	Tokens              middleware.TokenParser
	RateLimiter         *middleware.RateLimiter
	Config              *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(corsOrigins(deps.Config), deps.Config.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil, nil)
	}
	window := deps.Config.RateLimitWindow()
	strict := limiter.Middleware(middleware.AuthRateLimitConfig(deps.Config.RateLimitAuthThreshold, window))
	upload := limiter.Middleware(middleware.UploadRateLimitConfig())

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps.HealthUC))
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	public := v1.Group("")
	public.Use(limiter.Middleware(middleware.DefaultRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	// Protected routes
	protected := public.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC))

	contractorsOnly := middleware.RequireUserTypes(domain.UserTypeContractor)
	hirersOnly := middleware.RequireUserTypes(domain.UserTypeContractor, domain.UserTypeSubcontractor)

	NewAuthHandler(public, protected, strict, deps.AuthUC)
	NewContactHandler(public, strict, deps.ContactUC)
	NewCatalogHandler(public, deps.CatalogUC)
	NewJobHandler(public, protected, contractorsOnly, deps.JobUC)
	NewListingHandler(public, protected, upload, deps.ListingUC)
	NewUserHandler(protected, upload, deps.UserUC)
	NewProfileHandler(protected, upload, deps.ProfileUC)
	NewApprenticeProfileHandler(protected, upload, deps.ApprenticeProfileUC)
	NewReviewHandler(protected, deps.ReviewUC)
	NewOpportunityHandler(protected, hirersOnly, deps.OpportunityUC)
	NewNotificationHandler(protected, deps.NotificationUC)

	return r
}

func corsOrigins(cfg *config.Config) []string {
	origins := append([]string{}, cfg.AllowedOrigins...)
	if cfg.FrontendURL != "" {
		origins = append(origins, cfg.FrontendURL)
	}
	return origins
}
