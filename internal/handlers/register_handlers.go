package handlers

import (
	"fmt"
	"sync"

	"github.com/SscSPs/salon_management_app/cmd/docs"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/SscSPs/salon_management_app/internal/platform/config"
	"github.com/SscSPs/salon_management_app/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

var registerBindingOnce sync.Once

// RegisterValidations installs the custom binding tags (e.g. "clock") on gin's validator.
func RegisterValidations() error {
	var err error
	registerBindingOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		err = rules.RegisterValidations(v)
	})
	return err
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// loginLimiter may be nil to disable throttling of the credential endpoints.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	loginLimiter *limiter.Limiter,
) error {
	if err := RegisterValidations(); err != nil {
		return err
	}

	r.GET("/health", getHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Register public authentication routes
	registerAuthRoutes(r, cfg, services, loginLimiter)

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the authenticated /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerUserRoutes(v1, services.User, services.Establishment)
	registerEstablishmentRoutes(v1, services)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
