package router

import (
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/app"
	"github.com/KelluuhShit/loan-mpesa/internal/app/handlers"
	"github.com/KelluuhShit/loan-mpesa/internal/app/middleware"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
	"github.com/KelluuhShit/loan-mpesa/internal/service/eligibility"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
)

type Services struct {
	Eligibility app.EligibilityService
	Loans       app.LoanService
	Checkout    app.CheckoutService
}

type Options struct {
	ServiceName    string
	AllowedOrigins []string
}

func SetupRouter(services Services, opts Options) (*gin.Engine, error) {
	if err := eligibility.RegisterBindingValidators(services.Eligibility.Now); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())

	metrics, err := middleware.NewMetricMiddleware(otel.Meter(opts.ServiceName))
	if err != nil {
		return nil, err
	}
	r.Use(otelgin.Middleware(opts.ServiceName))
	r.Use(metrics)
	r.Use(middleware.AttachRequestDetails())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	healthCheckHandler := handlers.NewHealthCheckHandler()
	eligibilityHandler := handlers.NewEligibilityHandler(services.Eligibility)
	loanHandler := handlers.NewLoanHandler(services.Loans)
	checkoutHandler := handlers.NewCheckoutHandler(services.Checkout)

	r.GET("/health", healthCheckHandler.HealthCheck)

	v1 := r.Group("/api/v1")
	v1.POST("/eligibility", eligibilityHandler.CheckEligibility)
	v1.GET("/eligibility/:nationalId", eligibilityHandler.GetEligibility)

	v1.POST("/loans/quote", loanHandler.Quote)
	v1.GET("/loans/progress", loanHandler.Progress)

	checkout := v1.Group("/checkout/:trackingNumber")
	checkout.POST("/pay", checkoutHandler.Pay)
	checkout.POST("/retry", checkoutHandler.Retry)
	checkout.GET("", checkoutHandler.Status)
	checkout.DELETE("", checkoutHandler.Dismiss)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", consts.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", consts.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
