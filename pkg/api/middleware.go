package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"blog/pkg/logger"
	"blog/pkg/logship"
)

type ctxKeyRequestID struct{}
type ctxKeyUserID struct{}

var (
	RequestIDKey = ctxKeyRequestID{}
	UserIDKey    = ctxKeyUserID{}
)

// requestIDMiddleware propagates the caller's X-Request-Id or assigns a
// fresh uuid so every log line of a request can be correlated.
func (api *API) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, err := requestID(r)
		if err != nil {
			log.Errorf("[requestIDMiddleware] failed to generate request ID for %v: %v", r.RemoteAddr, err)
			writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDKey, reqID)))
	})
}

func requestID(r *http.Request) (string, error) {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id, nil
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	log.Debugf("[requestIDMiddleware] generated request ID:%s for %v", id, r.RemoteAddr)
	return id.String(), nil
}

func (api *API) headerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-Id")
		next.ServeHTTP(w, r)
	})
}

// authorized rejects requests without a valid bearer token before the
// handler runs. The caller's id is available through GetUserID.
func (api *API) authorized(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sID := shorten(GetRequestID(r.Context()))

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			log.Debugf("[authorized][%s] missing bearer token from %v", sID, r.RemoteAddr)
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := api.tokens.Verify(token)
		if err != nil {
			log.Debugf("[authorized][%s] rejected token from %v: %v", sID, r.RemoteAddr, err)
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (api *API) loggingMiddleware(kWriter logship.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := logger.New(w)
			defer func() {
				entry := logship.LogEntry{
					Timestamp:  time.Now(),
					IP:         getClientIP(r),
					StatusCode: lw.Status(),
					RequestID:  GetRequestID(r.Context()),
					Method:     r.Method,
					Path:       r.URL.Path,
					Bytes:      lw.BytesWritten(),
					Duration:   time.Since(start).Seconds(),
					Service:    api.ServiceName,
				}
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					if err := logship.Publish(ctx, kWriter, entry); err != nil {
						log.Errorf("[LoggingMiddleware] failed to write log to Kafka: %v", err)
						return
					}
					log.Debugf("[LoggingMiddleware] log entry sent to Kafka request_id:%s", entry.RequestID)
				}()
			}()

			next.ServeHTTP(lw, r)
		})
	}
}

func getClientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}

	return ip
}
