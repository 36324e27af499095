// Package httpserver manages server creation and api routing.
package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-transfers/internal/accountdelivery"
	"github.com/go-petr/pet-transfers/internal/accountlock"
	"github.com/go-petr/pet-transfers/internal/accountrepo"
	"github.com/go-petr/pet-transfers/internal/accountservice"
	promcollector "github.com/go-petr/pet-transfers/internal/metrics/prometheus"
	"github.com/go-petr/pet-transfers/internal/middleware"
	"github.com/go-petr/pet-transfers/internal/notification"
	"github.com/go-petr/pet-transfers/internal/transferdelivery"
	"github.com/go-petr/pet-transfers/internal/transferrepo"
	"github.com/go-petr/pet-transfers/internal/transferservice"
	"github.com/go-petr/pet-transfers/pkg/configpkg"
	"github.com/go-petr/pet-transfers/pkg/web"
)

// Server holds the in-memory stores, handlers router and configuration.
type Server struct {
	Engine     *gin.Engine
	Config     configpkg.Config
	Accounts   *accountrepo.RepoMem
	Ledger     *transferrepo.RepoMem
	Locks      *accountlock.Coordinator
	Dispatcher *notification.Dispatcher
	Registry   *prometheus.Registry
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close waits for the queued notifications to be delivered.
func (s *Server) Close() error {
	return s.Dispatcher.Close()
}

// New creates Server type with instantiated domains and routes.
func New(logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	registry := prometheus.NewRegistry()
	collector := promcollector.NewCollector(config.MetricsNamespace)

	if err := collector.Register(registry); err != nil {
		return nil, errors.New("cannot register metrics")
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	accountRepo := accountrepo.NewRepoMem()
	transferRepo := transferrepo.NewRepoMem()
	locks := accountlock.New(config.LockTimeout, collector)

	dispatcher := notification.NewDispatcher(
		notification.NewLogSink(logger),
		notification.DispatcherConfig{
			QueueSize:   config.NotificationQueueSize,
			Workers:     config.NotificationWorkers,
			MaxWaitTime: config.NotificationMaxWait,
		},
		collector,
		logger,
	)

	accountService := accountservice.New(accountRepo)
	transferService := transferservice.New(accountRepo, transferRepo, locks, dispatcher, collector)

	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := web.RegisterValidations(v); err != nil {
			dispatcher.Close()
			return nil, errors.New("cannot register amount validators")
		}
	}

	if config.Environement != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	v1 := engine.Group("/v1")

	v1.POST("/accounts", accountHandler.Create)
	v1.GET("/accounts/:id", accountHandler.Get)
	v1.POST("/accounts/transfer", transferHandler.Create)

	v1.GET("/transfers", transferHandler.List)
	v1.GET("/transfers/:id", transferHandler.Get)

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	server := &Server{
		Engine:     engine,
		Config:     config,
		Accounts:   accountRepo,
		Ledger:     transferRepo,
		Locks:      locks,
		Dispatcher: dispatcher,
		Registry:   registry,
	}

	return server, nil
}
