package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

const (
	maxAudioBytes = 10 << 20
	maxTextBytes  = 64 << 10
	queueSize     = 10
)

var _ application.InputSource = (*HTTPSource)(nil)

// Downloads opens a session artifact by name. A missing artifact is reported
// with an error matching fs.ErrNotExist.
type Downloads interface {
	Open(sessionID, name string) (*os.File, error)
}

type HTTPSource struct {
	addr        string
	server      *http.Server
	inputs      chan *domain.Input
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	closeOnce   sync.Once
	rateLimiter *RateLimiter
	authToken   string
	downloads   Downloads
	metrics     http.Handler
}

type HTTPOption func(*HTTPSource)

// WithDownloads serves session artifacts at GET /sessions/{id}/{artifact}.
func WithDownloads(d Downloads) HTTPOption {
	return func(h *HTTPSource) {
		h.downloads = d
	}
}

// WithMetrics serves the given handler at GET /metrics.
func WithMetrics(handler http.Handler) HTTPOption {
	return func(h *HTTPSource) {
		h.metrics = handler
	}
}

func NewHTTPSource(addr string, authToken string, logger *slog.Logger, opts ...HTTPOption) *HTTPSource {
	h := &HTTPSource{
		addr:        addr,
		inputs:      make(chan *domain.Input, queueSize),
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute),
		authToken:   authToken,
	}
	for _, o := range opts {
		o(h)
	}

	h.mux.HandleFunc("POST /audio", h.protect(h.handleAudio))
	h.mux.HandleFunc("POST /text", h.protect(h.handleText))
	h.mux.HandleFunc("POST /samples/{key}", h.protect(h.handleSample))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	if h.downloads != nil {
		h.mux.HandleFunc("GET /sessions/{id}/{artifact}", h.handleDownload)
	}
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics)
	}
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		h.logger.Info("HTTP input server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

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

	h.closeOnce.Do(func() {
		close(h.inputs)
	})
	h.running = false
	return nil
}

func (h *HTTPSource) Next(ctx context.Context) (*domain.Input, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case input, ok := <-h.inputs:
		if !ok {
			return nil, io.EOF
		}
		return input, nil
	}
}

func (h *HTTPSource) Handler() http.Handler {
	return h.mux
}

// Inject queues an input as if it had arrived over HTTP. It reports false
// when the queue is full.
func (h *HTTPSource) Inject(input *domain.Input) bool {
	select {
	case h.inputs <- input:
		return true
	default:
		return false
	}
}

// protect applies the auth token check and the per-IP rate limit.
func (h *HTTPSource) protect(next http.HandlerFunc) http.HandlerFunc {
	return h.rateLimiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}

			if token != h.authToken {
				h.logger.Warn("unauthorized request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	})
}

type acceptedResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

func (h *HTTPSource) enqueue(w http.ResponseWriter, input *domain.Input) {
	if !h.Inject(input) {
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("queued input",
		"session", input.SessionID,
		"origin", input.Origin,
		"kind", input.Kind,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(acceptedResponse{Status: "accepted", SessionID: input.SessionID})
}

// readBody reads at most limit bytes and reports whether the body was longer.
func readBody(r *http.Request, limit int64) ([]byte, bool, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return nil, true, nil
	}
	return data, false, nil
}

func (h *HTTPSource) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name parameter", http.StatusBadRequest)
		return
	}
	format, ok := domain.FormatFromName(name)
	if !ok {
		http.Error(w, "unsupported audio format, use mp3, wav, m4a or ogg", http.StatusUnsupportedMediaType)
		return
	}

	data, tooLarge, err := readBody(r, maxAudioBytes)
	if err != nil {
		h.logger.Error("reading audio body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if tooLarge {
		http.Error(w, "audio too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	h.enqueue(w, &domain.Input{
		SessionID: uuid.NewString(),
		Kind:      domain.InputAudio,
		Origin:    domain.OriginUpload,
		Name:      name,
		Audio:     data,
		Format:    format,
	})
}

func (h *HTTPSource) handleText(w http.ResponseWriter, r *http.Request) {
	data, tooLarge, err := readBody(r, maxTextBytes)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if tooLarge {
		http.Error(w, "text too large", http.StatusRequestEntityTooLarge)
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	h.enqueue(w, application.TextInput(text))
}

func (h *HTTPSource) handleSample(w http.ResponseWriter, r *http.Request) {
	input, err := application.SampleInput(r.PathValue("key"))
	if errors.Is(err, domain.ErrUnknownSample) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.enqueue(w, input)
}

func (h *HTTPSource) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, name := r.PathValue("id"), r.PathValue("artifact")

	f, err := h.downloads.Open(id, name)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("opening artifact", "session", id, "artifact", name, "error", err)
		http.Error(w, "failed to open artifact", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	var modTime time.Time
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, modTime, f)
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	queued := len(h.inputs)
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t,"queue_size":%d}`, status, running, queued)
}
