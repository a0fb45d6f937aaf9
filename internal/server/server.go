// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package server implements the admin HTTP API consumed by the tenancy UI:
// team and user CRUD, cluster stats, quota usage and kubeconfig download.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/telekom/tenancy-operator/pkg/gateway"
	"github.com/telekom/tenancy-operator/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// Server serves the admin API over the cluster object store.
type Server struct {
	client client.Client
	log    logr.Logger
	addr   string
}

// New creates a Server listening on addr.
func New(c client.Client, log logr.Logger, addr string) *Server {
	return &Server{client: c, log: log, addr: addr}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.Handle("GET /api/stats", s.instrument("/api/stats", s.handleStats))

	mux.Handle("GET /api/teams", s.instrument("/api/teams", s.handleListTeams))
	mux.Handle("POST /api/teams", s.instrument("/api/teams", s.handleCreateTeam))
	mux.Handle("GET /api/teams/{name}", s.instrument("/api/teams/{name}", s.handleGetTeam))
	mux.Handle("PUT /api/teams/{name}", s.instrument("/api/teams/{name}", s.handleUpdateTeam))
	mux.Handle("DELETE /api/teams/{name}", s.instrument("/api/teams/{name}", s.handleDeleteTeam))
	mux.Handle("GET /api/teams/{name}/quota", s.instrument("/api/teams/{name}/quota", s.handleTeamQuota))

	mux.Handle("GET /api/users", s.instrument("/api/users", s.handleListUsers))
	mux.Handle("POST /api/users", s.instrument("/api/users", s.handleCreateUser))
	mux.Handle("GET /api/users/{name}", s.instrument("/api/users/{name}", s.handleGetUser))
	mux.Handle("PUT /api/users/{name}", s.instrument("/api/users/{name}", s.handleUpdateUser))
	mux.Handle("DELETE /api/users/{name}", s.instrument("/api/users/{name}", s.handleDeleteUser))
	mux.Handle("GET /api/users/{name}/kubeconfig", s.instrument("/api/users/{name}/kubeconfig", s.handleDownloadKubeconfig))

	return mux
}

// Run serves the API until the context is canceled, then drains in-flight
// requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("Starting admin API server", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("admin API server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// statusRecorder captures the response code for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, req)
		metrics.AdminRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorBody is the uniform error payload. Transient remote failures carry
// transient=true so the UI can offer a retry instead of showing a hard error.
type errorBody struct {
	Error     string `json:"error"`
	Transient bool   `json:"transient,omitempty"`
}

// writeError maps the uniform error classes to HTTP codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	class := gateway.Classify(err)
	code := http.StatusInternalServerError
	switch class {
	case gateway.ClassNotFound:
		code = http.StatusNotFound
	case gateway.ClassConflict:
		code = http.StatusConflict
	case gateway.ClassTransient:
		code = http.StatusServiceUnavailable
	}
	if class == gateway.ClassTransient {
		s.log.Error(err, "Transient remote failure serving admin request")
	}
	writeJSON(w, code, errorBody{Error: err.Error(), Transient: class == gateway.ClassTransient})
}

func decodeBody(req *http.Request, into any) error {
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}
