package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anthropics/swarmrun/runtime/internal/audit"
)

// Server wraps a gin engine and the http.Server that drives it, following
// the same construct-then-Start/Shutdown shape regardless of the
// underlying router.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	handlers   *Handlers
}

// NewServer builds the full route table over handlers and binds it to addr.
func NewServer(addr string, handlers *Handlers) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), auditLogger())

	engine.GET("/healthz", handlers.Health)

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/agents", handlers.ListAgents)
		v1.POST("/agents/:id/execute", handlers.Execute)
		v1.GET("/agents/:id/history", handlers.History)
		v1.GET("/agents/:id/stats", handlers.Stats)
		v1.GET("/agents/:id/stream", handlers.Stream)

		v1.POST("/workflows/compile", handlers.CompileWorkflow)
		v1.POST("/workflows/execute", handlers.ExecuteWorkflow)

		v1.GET("/plans", handlers.ListPlans)
		v1.GET("/plans/:id", handlers.GetPlan)
		v1.POST("/plans/:id/cancel", handlers.CancelPlan)

		v1.GET("/costs/summary", handlers.CostSummary)
		v1.GET("/costs/by-agent/:id", handlers.CostByAgent)
		v1.GET("/costs/by-guild/:guild", handlers.CostByGuild)
		v1.GET("/costs/export.csv", handlers.ExportCosts)
	}

	return &Server{
		engine:   engine,
		handlers: handlers,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 0, // streaming handlers hijack the connection themselves
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start blocks until the server is stopped or fails to bind.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown cancels every plan execution still running under ExecuteWorkflow
// and waits for them to finish, using up to half of ctx's deadline, before
// draining in-flight requests and closing the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	cancelled := s.handlers.execs.cancelAll()
	if cancelled > 0 {
		if deadline, ok := ctx.Deadline(); ok {
			waitTimeout := time.Until(deadline) / 2
			if waitTimeout > 0 {
				s.handlers.execs.waitAll(waitTimeout)
			}
		}
	}
	return s.httpServer.Shutdown(ctx)
}

// Engine exposes the underlying gin engine for testing.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func auditLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		audit.Log("event=http_request method=%s path=%s status=%d duration_ms=%d",
			c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start).Milliseconds())
	}
}
