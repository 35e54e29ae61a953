// Package web provides the web server of the bookadmin panel: routing,
// sessions, templates and background jobs.
package web

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/testwork/bookadmin/caching"
	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/util/common"
	"github.com/testwork/bookadmin/web/access"
	"github.com/testwork/bookadmin/web/controller"
	"github.com/testwork/bookadmin/web/job"
	"github.com/testwork/bookadmin/web/locale"
	"github.com/testwork/bookadmin/web/middleware"
	"github.com/testwork/bookadmin/web/service"
	"github.com/testwork/bookadmin/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/robfig/cron/v3"
)

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

// Server represents the web server of the panel with its controllers and
// scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	gate  access.Gate
	index *controller.IndexController
	admin *controller.AdminController

	settingService service.SettingService

	cron     *cron.Cron
	counters *caching.Cache

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a web server guarding the admin surface in mode.
func NewServer(mode config.AuthMode) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		gate:   access.NewGate(mode),
		ctx:    ctx,
		cancel: cancel,
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"i18n": func(localizer *i18n.Localizer, key string, params ...string) string {
			return locale.Localize(localizer, key, params...)
		},
		"inc": func(n int) int { return n + 1 },
		"dec": func(n int) int { return n - 1 },
		"hasItem": func(list string, item string) bool {
			for _, v := range strings.Split(list, ",") {
				if v == item {
					return true
				}
			}
			return false
		},
	}
}

// getHtmlTemplate parses embedded HTML templates from the bundled `htmlFS`.
func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// initRouter initializes Gin, registers middleware, templates and
// controllers and returns the configured engine. secret signs the session
// cookie.
func (s *Server) initRouter(secret []byte) (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedExtensions([]string{".json"}),
	))
	engine.Use(middleware.RedirectMiddleware())

	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(session.CookieName, store))

	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}
	engine.Use(locale.LocalizerMiddleware())
	engine.Use(middleware.IdentityMiddleware())

	funcMap := templateFuncs()
	engine.SetFuncMap(funcMap)
	tpl, err := s.getHtmlTemplate(funcMap)
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tpl)

	if s.counters == nil {
		s.counters = caching.NewCache(time.Minute)
	}
	throttle := middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(), s.counters)

	g := engine.Group("/")
	s.index = controller.NewIndexController(g, s.gate.Mode(), throttle)
	s.admin = controller.NewAdminController(g, s.gate)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules the background jobs.
func (s *Server) startTask() {
	if database.IsSQLite() {
		spec, err := s.settingService.GetCheckpointCron()
		if err != nil || spec == "" {
			spec = "@every 10m"
		}
		if _, err := s.cron.AddJob(spec, job.NewCheckpointJob()); err != nil {
			logger.Warningf("Add CheckpointJob error[%v], Runtime[%s] invalid", err, spec)
		}
	}
	if _, err := s.cron.AddJob("@daily", job.NewClearLogsJob(24*time.Hour)); err != nil {
		logger.Warning("Add ClearLogsJob error", err)
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	loc, err := s.settingService.GetTimeLocation()
	if err != nil {
		return err
	}
	s.cron = cron.New(cron.WithLocation(loc), cron.WithParser(service.CronParser))
	s.cron.Start()

	secret, err := s.settingService.GetSecret()
	if err != nil {
		return err
	}
	engine, err := s.initRouter(secret)
	if err != nil {
		return err
	}

	listen, err := s.settingService.GetListen()
	if err != nil {
		return err
	}
	port, err := s.settingService.GetPort()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(listen, strconv.Itoa(port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Infof("Web server running HTTP on %v (auth mode %s)", listener.Addr(), s.gate.Mode())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return s.ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()

	return nil
}

// Stop shuts the web server down and stops the cron jobs. Requests still in
// flight once shutdown times out see their context cancelled.
func (s *Server) Stop() error {
	defer s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.counters != nil {
		_ = s.counters.Flush()
	}
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err1 = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
		if err2 != nil && strings.Contains(err2.Error(), "use of closed network connection") {
			err2 = nil
		}
	}
	return common.Combine(err1, err2)
}
