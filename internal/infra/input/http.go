package input

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"smart-lights/internal/application"
)

const maxCommandBytes = 4096

type HTTPSource struct {
	addr        string
	authToken   string
	server      *http.Server
	router      chi.Router
	commands    chan *application.CommandRequest
	done        chan struct{}
	logger      *slog.Logger
	rateLimiter *RateLimiter

	mu        sync.Mutex
	running   bool
	closeOnce sync.Once
}

type commandResponse struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

type reply struct {
	answer string
	err    error
}

// NewHTTPSource serves POST /command and GET /health. A non-nil metrics
// handler is mounted at GET /metrics.
func NewHTTPSource(addr, authToken string, metrics http.Handler, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:        addr,
		authToken:   authToken,
		commands:    make(chan *application.CommandRequest, 10),
		done:        make(chan struct{}),
		logger:      logger,
		rateLimiter: NewRateLimiter(30, time.Minute),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.rateLimiter.Middleware)
		r.Use(h.authenticate)
		r.Post("/command", h.handleCommand)
	})

	h.router = r
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Handler() http.Handler {
	return h.router
}

func (h *HTTPSource) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.server = &http.Server{
		Addr:              h.addr,
		Handler:           h.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		h.logger.Info("HTTP command server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.closeOnce.Do(func() {
		close(h.done)
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}
	h.running = false

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := h.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	return nil
}

func (h *HTTPSource) NextCommand(ctx context.Context) (*application.CommandRequest, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, io.EOF
	case req := <-h.commands:
		return req, nil
	}
}

func (h *HTTPSource) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" && r.Header.Get("X-Auth-Token") != h.authToken {
			h.logger.Warn("unauthorized command request", "remote_addr", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, commandResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPSource) handleCommand(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, commandResponse{Error: "failed to read body"})
		return
	}
	defer r.Body.Close()

	text := strings.TrimSpace(string(data))
	if text == "" {
		writeJSON(w, http.StatusBadRequest, commandResponse{Error: "empty command"})
		return
	}

	replies := make(chan reply, 1)
	req := &application.CommandRequest{
		Text: text,
		Reply: func(answer string, err error) {
			replies <- reply{answer: answer, err: err}
		},
	}

	select {
	case h.commands <- req:
		h.logger.Info("received command via HTTP", "text", text, "request_id", middleware.GetReqID(r.Context()))
	case <-h.done:
		writeJSON(w, http.StatusServiceUnavailable, commandResponse{Error: "shutting down"})
		return
	default:
		writeJSON(w, http.StatusServiceUnavailable, commandResponse{Error: "queue full, try again"})
		return
	}

	select {
	case res := <-replies:
		if res.err != nil {
			writeJSON(w, http.StatusBadGateway, commandResponse{Error: res.err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, commandResponse{Answer: res.answer})
	case <-r.Context().Done():
		h.logger.Warn("client went away before the command finished", "text", text)
	case <-h.done:
		writeJSON(w, http.StatusServiceUnavailable, commandResponse{Error: "shutting down"})
	}
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()

	status := "ok"
	code := http.StatusOK
	if !running {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":     status,
		"running":    running,
		"queue_size": len(h.commands),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
