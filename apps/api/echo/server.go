package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/sodiem/core"
	"github.com/trezcool/sodiem/core/gradebook"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		GradeSvc   gradebook.ServiceInterface
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		conf     *core.Config
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		conf:     deps.Conf,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup(deps)
	return s
}

func (s *Server) setup(deps ServerDeps) {
	conf := deps.Conf
	testMode := conf.Env == core.EnvTest

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !testMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Env == core.EnvDev || testMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	// room for the multipart envelope around a max-sized file; the file itself is checked in the handler
	s.app.Use(middleware.BodyLimit(fmt.Sprintf("%dK", conf.Server.MaxUploadSize/1024+1024)))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	sess := newSessions(conf)
	jwt := sess.middleware()

	registerAuthAPI(s.app.Group("/auth"), sess, deps.GradeSvc, deps.Validate, deps.Translator)
	registerStudentAPI(s.app.Group("/student"), jwt, deps.GradeSvc)
	registerAdminAPI(s.app.Group("/admin"), jwt, conf, deps.Logger, deps.GradeSvc, deps.Validate, deps.Translator)

	s.app.GET("/*", newSPAHandler(conf.Server.StaticDir))
}

// Start starts the server and blocks until it stops; a listen failure is sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.conf.Server.Addr()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
