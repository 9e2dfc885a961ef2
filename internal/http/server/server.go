// Package server wires every HTTP route onto one chi router and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/http/handlers/session"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/handlers/web"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
)

// Deps are the collaborators the routes close over.
type Deps struct {
	Records  student.Records
	Sessions *auth.Sessions
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the full route table:
//
//	POST   /api/login                  open a session
//	POST   /api/logout                 end it
//	POST   /api/students               create
//	GET    /api/students               list (?q= &key= &dir= &algo=)
//	POST   /api/students/sort          reorder and persist
//	GET    /api/students/export        CSV download
//	GET    /api/students/{id}          get one
//	PUT    /api/students/{id}          update
//	DELETE /api/students/{id}          delete
//	GET    /metrics                    Prometheus
//	GET    /healthz                    liveness
//
// plus the browser UI from package web. Everything under /api/students
// requires a session.
func NewRouter(d Deps) (*chi.Mux, error) {
	ui, err := web.New(d.Records, d.Sessions)
	if err != nil {
		return nil, fmt.Errorf("server.NewRouter: %w", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", session.Login(d.Sessions))
		r.Post("/logout", session.Logout(d.Sessions))

		r.Route("/students", func(r chi.Router) {
			r.Use(middleware.RequireSession(d.Sessions, true))

			r.Post("/", student.New(d.Records))
			r.Get("/", student.GetList(d.Records))
			r.Post("/sort", student.Sort(d.Records))
			r.Get("/export", student.Export(d.Records))
			r.Get("/{id}", student.GetByID(d.Records))
			r.Put("/{id}", student.Update(d.Records))
			r.Delete("/{id}", student.Delete(d.Records))
		})
	})

	ui.Routes(r)
	return r, nil
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully,
// giving in-flight requests up to shutdownTimeout to finish. A listen
// failure ends Run early with that error.
func Run(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server started", slog.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server.Run: listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.Run: shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
