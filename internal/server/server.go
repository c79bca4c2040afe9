package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/rkimidis/acucare-pathways-sub001/internal/audit"
	auditdomain "github.com/rkimidis/acucare-pathways-sub001/internal/audit/domain"
	"github.com/rkimidis/acucare-pathways-sub001/internal/authorization"
	"github.com/rkimidis/acucare-pathways-sub001/internal/clinicalapi"
	"github.com/rkimidis/acucare-pathways-sub001/internal/config"
	"github.com/rkimidis/acucare-pathways-sub001/internal/observability"
	obslogger "github.com/rkimidis/acucare-pathways-sub001/internal/observability/logger"
	obsmetrics "github.com/rkimidis/acucare-pathways-sub001/internal/observability/metrics"
	obstracing "github.com/rkimidis/acucare-pathways-sub001/internal/observability/tracing"
	"github.com/rkimidis/acucare-pathways-sub001/internal/roster"
	"github.com/rkimidis/acucare-pathways-sub001/internal/session"
	"github.com/rkimidis/acucare-pathways-sub001/internal/triage"
	triagedomain "github.com/rkimidis/acucare-pathways-sub001/internal/triage/domain"
)

var Module = fx.Module("http.server",
	clinicalapi.Module,
	session.Module,
	roster.Module,
	audit.Module,
	authorization.Module,
	triage.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(obsCfg.ServiceName))
	r.Use(httpMetrics.GinMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Sessions  *session.Manager
	AuthzSvc  authorization.Service
	AuditSvc  auditdomain.Service
	TriageSvc triagedomain.Service
	Roster    roster.Resolver
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	sessions  *session.Manager
	authzSvc  authorization.Service
	auditSvc  auditdomain.Service
	triageSvc triagedomain.Service
	roster    roster.Resolver
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		sessions:  p.Sessions,
		authzSvc:  p.AuthzSvc,
		auditSvc:  p.AuditSvc,
		triageSvc: p.TriageSvc,
		roster:    p.Roster,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	api.Use(s.ErrorHandlingMiddleware())
	api.Use(s.SessionRequired())

	// -------- Queue --------
	api.GET("/queue", s.authorize(authorization.ObjectTriageQueue, authorization.ActionQueueView), s.GetQueue)
	api.PUT("/queue/filter", s.authorize(authorization.ObjectTriageQueue, authorization.ActionQueueView), s.SetQueueFilter)
	api.POST("/queue/refresh", s.authorize(authorization.ObjectTriageQueue, authorization.ActionQueueView), s.RefreshQueue)

	// -------- Duty roster --------
	api.GET("/duty-roster/current", s.authorize(authorization.ObjectDutyRoster, authorization.ActionDutyRosterView), s.GetCurrentDutyRoster)

	// -------- Assignment actions --------
	api.POST("/triage-cases/:id/claim", s.authorize(authorization.ObjectTriageCase, authorization.ActionCaseClaim), s.ClaimCase)
	api.POST("/triage-cases/:id/unassign", s.authorize(authorization.ObjectTriageCase, authorization.ActionCaseUnassign), s.UnassignCase)
	api.POST("/triage-cases/:id/reassign", s.authorize(authorization.ObjectTriageCase, authorization.ActionCaseReassign), s.ReassignCase)

	// -------- Operator audit trail --------
	api.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}

func (s *Server) RegisterAuthRoutes() {
	auth := s.engine.Group("/auth")
	auth.Use(s.ErrorHandlingMiddleware())

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.SessionRequired(), s.Me)
}

func registerRoutes(s *Server) {
	s.RegisterAuthRoutes()
	s.RegisterAPIRoutes()
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
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
