package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core"
	"github.com/vidyalaya/vidyalaya/core/attendance"
	"github.com/vidyalaya/vidyalaya/core/directory"
	"github.com/vidyalaya/vidyalaya/core/payment"
	"github.com/vidyalaya/vidyalaya/core/registration"
	"github.com/vidyalaya/vidyalaya/core/schedule"
	"github.com/vidyalaya/vidyalaya/core/user"
	sessionsvc "github.com/vidyalaya/vidyalaya/services/session"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		Directory     *directory.Directory
		UserSvc       *user.Service
		RegSvc        *registration.Service
		AttendanceSvc *attendance.Service
		ScheduleSvc   *schedule.Service
		PaymentSvc    *payment.Service
		Sessions      sessionsvc.Store
		Validate      *validator.Validate
		Translator    ut.Translator

		// HealthCheck reports whether the storage backend is reachable. Optional.
		HealthCheck func(ctx context.Context) error
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		ServerDeps
		app      *echo.Echo
		metrics  *metrics
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		ServerDeps: deps,
		app:        echo.New(),
		metrics:    newMetrics(),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.metrics.middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/healthz", s.health)
	s.app.GET("/metrics", s.metrics.handler())

	v1 := s.app.Group("/v1")
	auth := s.authMiddleware

	registerAuthAPI(v1, auth, s)
	registerStudentAPI(v1, auth, s)
	registerTeacherAPI(v1, auth, s)
	registerScheduleAPI(v1, auth, s)
	registerPaymentAPI(v1, auth, s)
}

func (s *server) Start() {
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- errors.Wrap(err, "starting server")
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.Conf.AppName+" API!")
}

func (s *server) health(ctx echo.Context) error {
	if s.HealthCheck != nil {
		if err := s.HealthCheck(ctx.Request().Context()); err != nil {
			s.Logger.Error("health check failed", err)
			return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
