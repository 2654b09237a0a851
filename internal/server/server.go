package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/buildinfo"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/config"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/document"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/observability"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/pipeline"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// maxBodyBytes caps the size of an uploaded document.
	maxBodyBytes = 10 << 20

	shutdownTimeout = 10 * time.Second
)

// Server is the HTTP API in front of a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	layout config.Layout
	logger *log.Logger
	router chi.Router
}

// New creates a server. layout holds the geometry used when a request does
// not override it; a nil logger uses log.Default().
func New(runner *pipeline.Runner, layout config.Layout, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, layout: layout, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/layout/{format}", s.handleLayoutFormat)
	})
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.Server) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// layoutResponse is the body of a successful POST /v1/layout.
type layoutResponse struct {
	RunID     string         `json:"run_id"`
	RequestID string         `json:"request_id"`
	CacheHit  bool           `json:"cache_hit"`
	Stats     pipeline.Stats `json:"stats"`
	Layout    any            `json:"layout"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, err := s.runLayout(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		RunID:     res.RunID,
		RequestID: RequestID(r.Context()),
		CacheHit:  res.CacheHit,
		Stats:     res.Stats,
		Layout:    res.Layout,
	})
}

// contentTypes maps rendered formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

func (s *Server) handleLayoutFormat(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", err))
		return
	}
	res, err := s.runLayout(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.runner.Render(r.Context(), res.Layout, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// runLayout reads the document body and applies the query overrides
// max_steps, cell_width, cell_height, grids and refresh.
func (s *Server) runLayout(w http.ResponseWriter, r *http.Request) (*pipeline.Result, error) {
	opts, err := s.options(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	defs, err := pipeline.Parse(data, pipeline.FormatFromContentType(r.Header.Get("Content-Type")))
	if err != nil {
		return nil, err
	}
	opts.Logger = s.logger.With("request", RequestID(r.Context()))
	return s.runner.Layout(r.Context(), defs, opts)
}

func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{Layout: s.layout}
	q := r.URL.Query()

	if v := q.Get("max_steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "max_steps must be a non-negative integer, got %q", v)
		}
		opts.Layout.MaxSteps = n
	}
	for name, dst := range map[string]*float64{
		"cell_width":  &opts.Layout.CellWidth,
		"cell_height": &opts.Layout.CellHeight,
	} {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a finite number, got %q", name, v)
			}
			*dst = f
		}
	}
	opts.Grids = q.Get("grids") == "true"
	opts.Refresh = q.Get("refresh") == "true"
	return opts, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// StatusFor maps an error to an HTTP status: input errors are 400, a
// stalled layout is 422, anything else is 500.
func StatusFor(err error) int {
	switch code := errors.GetCode(err); {
	case code == errors.ErrCodeLayoutStalled:
		return http.StatusUnprocessableEntity
	case errors.IsInputError(err), code == errors.ErrCodeInvalidConfig, code == errors.ErrCodeInvalidEndpoint:
		return http.StatusBadRequest
	case stderrors.Is(err, document.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
		if status == http.StatusBadRequest {
			code = errors.ErrCodeInvalidInput
		}
	}

	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "request", RequestID(r.Context()), "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// requestID assigns every request a UUID, keeping a well-formed one sent by
// the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		observability.Server().OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.Server().OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request",
			"request", RequestID(ctx),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", dur)
	})
}
