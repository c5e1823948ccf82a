package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/config"
	"github.com/DriveBook/DriveBook/internal/common/discovery"
	"github.com/DriveBook/DriveBook/internal/common/logger"
	"github.com/DriveBook/DriveBook/internal/common/middleware"
	"github.com/google/uuid"
)

// RegisterFunc registers application routes on the mux.
type RegisterFunc func(mux *http.ServeMux)

type RunHTTPOptions struct {
	ShutdownTimeout time.Duration
}

func defaultRunHTTPOptions() RunHTTPOptions {
	return RunHTTPOptions{
		ShutdownTimeout: 5 * time.Second,
	}
}

// RunHTTPServer is the unified HTTP service template:
// - builds the mux and registers /healthz plus application routes
// - wraps everything in the middleware chain (recovery, tracing, access log,
//   JWT auth, RBAC, rate limiting)
// - registers with Consul (HTTP check)
// - shuts down gracefully on SIGINT/SIGTERM
func RunHTTPServer(cfg *config.Config, log logger.Logger, ping func(ctx context.Context) error, register RegisterFunc, opts ...func(*RunHTTPOptions)) error {
	if cfg == nil {
		return fmt.Errorf("cfg is nil")
	}
	if log == nil {
		return fmt.Errorf("log is nil")
	}

	o := defaultRunHTTPOptions()
	for _, apply := range opts {
		if apply != nil {
			apply(&o)
		}
	}

	// Consul failures never block startup.
	consulClient, err := discovery.NewConsulClient(cfg.Consul.Host, cfg.Consul.Port)
	if err != nil {
		log.Warnf("failed to connect to Consul: %v", err)
		consulClient = nil
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", HealthHandler(cfg.Server.Name, ping))
	if register != nil {
		register(mux)
	}

	var limiter middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewTokenBucket(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	}

	handler := Chain(
		RecoveryMiddleware(log),              // keep panics contained
		TracingMiddleware(cfg.Server.Name),   // server span per request
		AccessLogMiddleware(log),             // latency + status
		JWTAuthMiddleware(cfg.Auth, log),     // identity into ctx
		RBACMiddleware(cfg.Auth),             // route->roles table
		RateLimitMiddleware(limiter, cfg.RateLimit.Paths),
	)(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if consulClient != nil {
		serviceID := fmt.Sprintf("%s-%s", cfg.Server.Name, uuid.New().String())
		registry := discovery.NewServiceRegistry(
			consulClient,
			serviceID,
			cfg.Server.Name,
			cfg.Server.Host,
			cfg.Server.Port,
			[]string{"http"},
		)
		if err := registry.Register(); err != nil {
			log.Warnf("failed to register service to Consul: %v", err)
		} else {
			log.Infof("Service registered to Consul: %s", serviceID)
			defer func() {
				if err := registry.Deregister(); err != nil {
					log.Warnf("failed to deregister service from Consul: %v", err)
				}
			}()
		}
	}

	log.Infof("%s starting on %s", cfg.Server.Name, srv.Addr)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infof("received signal %v, shutting down...", sig)
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http serve failed: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("http shutdown timeout, forcing close: %v", err)
		_ = srv.Close()
	} else {
		log.Info("http server stopped gracefully")
	}

	return nil
}

// WithShutdownTimeout overrides the graceful-shutdown wait.
func WithShutdownTimeout(d time.Duration) func(*RunHTTPOptions) {
	return func(o *RunHTTPOptions) {
		if d > 0 {
			o.ShutdownTimeout = d
		}
	}
}

// HealthHandler reports service health. The DB ping runs behind a circuit
// breaker so a down database is not hammered by the check interval.
func HealthHandler(name string, ping func(ctx context.Context) error) http.Handler {
	breaker := middleware.NewCircuitBreaker(name+"-db", 3, 30*time.Second)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ping == nil {
			WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		err := breaker.Call(r.Context(), func() error {
			return ping(r.Context())
		})
		if err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"reason": err.Error(),
			})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
