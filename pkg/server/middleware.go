package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"atelier/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	userKey      contextKey = "user"
)

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

type loggingWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (lw *loggingWriter) WriteHeader(code int) {
	if !lw.wroteHeader {
		lw.status = code
		lw.wroteHeader = true
		lw.ResponseWriter.WriteHeader(code)
	}
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	if !lw.wroteHeader {
		lw.WriteHeader(http.StatusOK)
	}
	n, err := lw.ResponseWriter.Write(b)
	lw.size += n
	return n, err
}

// Logging writes one line per request, level by status class
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lw, r)

			level := zap.InfoLevel
			if lw.status >= 400 && lw.status < 500 {
				level = zap.WarnLevel
			} else if lw.status >= 500 {
				level = zap.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.String("client_ip", clientIP(r)),
				zap.Int("status", lw.status),
				zap.Int("bytes_written", lw.size),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}

// RateLimit allows rpm requests per minute per client address, with bursts of up to rpm
func RateLimit(rpm int) func(http.Handler) http.Handler {
	var mtx sync.Mutex
	clients := make(map[string]*rate.Limiter)
	every := rate.Every(time.Minute / time.Duration(rpm))

	limiterFor := func(ip string) *rate.Limiter {
		mtx.Lock()
		defer mtx.Unlock()
		l, ok := clients[ip]
		if !ok {
			l = rate.NewLimiter(every, rpm)
			clients[ip] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiterFor(clientIP(r)).Allow() {
				w.Header().Set("Retry-After", "60")
				writeMessage(w, http.StatusTooManyRequests, "Too many requests. Try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate rejects requests without a valid bearer token
func Authenticate(auth *Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeMessage(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			user, err := auth.Verify(token)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Session expired, please log in again")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user of the request
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
