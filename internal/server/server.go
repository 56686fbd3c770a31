// Package server exposes retrieval and chat over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/msami123/Web-chat-bot/internal/chat"
	"github.com/msami123/Web-chat-bot/internal/domain"
	"github.com/msami123/Web-chat-bot/internal/index"
	"github.com/msami123/Web-chat-bot/internal/logger"
	"github.com/msami123/Web-chat-bot/internal/metrics"
)

// Bot is the chat surface served over HTTP.
type Bot interface {
	Ask(ctx context.Context, conv *chat.Conversation, text string) (chat.Reply, error)
	Retrieve(text, lang string, k int) []domain.ScoredChunk
	Context(text, lang string, k, maxChars int) (string, []domain.Chunk)
	Reload(ctx context.Context) (*index.Index, error)
}

// errorHandler writes the response for err and reports whether it did.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements the HTTP API.
type Server struct {
	bot           Bot
	conversations *conversationStore
	answerTimeout time.Duration
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// Option configures a Server.
type Option func(*Server)

// WithAnswerTimeout bounds every chat answer. It must stay below the HTTP
// write timeout so the reply can still be written.
func WithAnswerTimeout(d time.Duration) Option {
	return func(s *Server) { s.answerTimeout = d }
}

// New creates an HTTP API server. maxConversations bounds the number of
// conversations kept in memory.
func New(bot Bot, maxConversations int, l *zap.Logger, opts ...Option) *Server {
	s := &Server{
		bot:           bot,
		conversations: newConversationStore(maxConversations),
		logger:        logger.OrNop(l),
		errorHandlers: []errorHandler{
			sentinelHandler(chat.ErrEmptyMessage, http.StatusBadRequest, "empty_message"),
			sentinelHandler(chat.ErrNoLoader, http.StatusNotImplemented, "reload_unavailable"),
			sentinelHandler(domain.ErrEmptyCorpus, http.StatusUnprocessableEntity, "empty_corpus"),
			sentinelHandler(index.ErrDegenerateVocabulary, http.StatusUnprocessableEntity, "degenerate_vocabulary"),
			sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"),
			sentinelHandler(context.Canceled, http.StatusServiceUnavailable, "canceled"),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the chi router with logging, recovery and metrics.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/retrieve", s.handleRetrieve)
		r.Post("/context", s.handleContext)
		r.Post("/chat", s.handleChat)
		r.Get("/conversations/{id}", s.handleConversation)
		r.Get("/quick-actions", s.handleQuickActions)
		r.Post("/reload", s.handleReload)
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("request failed", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(l *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					l.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger emits one log line per request and propagates X-Request-ID.
func requestLogger(l *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			l.Info("http_request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
