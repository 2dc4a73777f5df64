package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/rosterly/internal/affiliate"
	affiliatedomain "github.com/smallbiznis/rosterly/internal/affiliate/domain"
	"github.com/smallbiznis/rosterly/internal/config"
	"github.com/smallbiznis/rosterly/internal/credit"
	creditdomain "github.com/smallbiznis/rosterly/internal/credit/domain"
	"github.com/smallbiznis/rosterly/internal/eligibility"
	"github.com/smallbiznis/rosterly/internal/event"
	eventdomain "github.com/smallbiznis/rosterly/internal/event/domain"
	"github.com/smallbiznis/rosterly/internal/events"
	"github.com/smallbiznis/rosterly/internal/observability"
	obsmiddleware "github.com/smallbiznis/rosterly/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rosterly/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rosterly/internal/observability/tracing"
	"github.com/smallbiznis/rosterly/internal/payment"
	paymentdomain "github.com/smallbiznis/rosterly/internal/payment/domain"
	"github.com/smallbiznis/rosterly/internal/person"
	persondomain "github.com/smallbiznis/rosterly/internal/person/domain"
	"github.com/smallbiznis/rosterly/internal/price"
	pricedomain "github.com/smallbiznis/rosterly/internal/price/domain"
	"github.com/smallbiznis/rosterly/internal/registration"
	regdomain "github.com/smallbiznis/rosterly/internal/registration/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	affiliate.Module,
	person.Module,
	event.Module,
	price.Module,
	eligibility.Module,
	events.Module,
	credit.Module,
	registration.Module,
	payment.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	affiliateRepo   affiliatedomain.Repository
	personRepo      persondomain.Repository
	eventSvc        eventdomain.Service
	priceSvc        pricedomain.Service
	registrationSvc regdomain.Service
	paymentSvc      paymentdomain.Service
	creditRepo      creditdomain.Repository
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	AffiliateRepo   affiliatedomain.Repository
	PersonRepo      persondomain.Repository
	EventSvc        eventdomain.Service
	PriceSvc        pricedomain.Service
	RegistrationSvc regdomain.Service
	PaymentSvc      paymentdomain.Service
	CreditRepo      creditdomain.Repository
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		affiliateRepo:   p.AffiliateRepo,
		personRepo:      p.PersonRepo,
		eventSvc:        p.EventSvc,
		priceSvc:        p.PriceSvc,
		registrationSvc: p.RegistrationSvc,
		paymentSvc:      p.PaymentSvc,
		creditRepo:      p.CreditRepo,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AffiliateContext())

	// -------- Events --------
	api.POST("/events", s.CreateEvent)
	api.GET("/events", s.ListEvents)
	api.GET("/events/:id", s.GetEventByID)
	api.GET("/events/:id/prices", s.ListEventPrices)
	api.POST("/events/:id/prices", s.CreateEventPrice)
	api.GET("/events/:id/waiting", s.ListWaiting)

	// -------- Registrations --------
	api.POST("/registrations", s.CreateRegistration)
	api.GET("/registrations/:id", s.GetRegistrationByID)
	api.DELETE("/registrations/:id", s.DeleteRegistration)
	api.GET("/registrations/:id/payments", s.ListRegistrationPayments)
	api.POST("/registrations/:id/payments", s.RecordPayment)
	api.POST("/registrations/:id/redeem", s.RedeemCredit)

	// -------- Payments --------
	api.POST("/payments/:id/refund", s.RefundPayment)
	api.POST("/payments/:id/credit_back", s.CreditBackPayment)
	api.POST("/payments/:id/transfer", s.TransferPayment)

	// -------- Gateway --------
	api.POST("/gateway/:provider/return", s.HandleGatewayReturn)

	// -------- People --------
	api.POST("/people", s.CreatePerson)
	api.GET("/people/:id", s.GetPersonByID)
	api.GET("/people/:id/checkout", s.Checkout)
	api.GET("/people/:id/credits", s.ListPersonCredits)

	// -------- Reports --------
	api.GET("/reports/unpaid", s.UnpaidReport)
}
