package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"rcadesk/internal/logging"
)

const requestIDHeader = "X-Request-Id"

// requestID reuses a caller-supplied X-Request-Id or mints a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// actorSlot lets the auth middleware, which runs inside the request logger,
// report the resolved actor back to it.
type actorSlot struct{ id int64 }

type actorSlotKey struct{}

func noteActor(ctx context.Context, id int64) {
	if slot, ok := ctx.Value(actorSlotKey{}).(*actorSlot); ok {
		slot.id = id
	}
}

// requestLogger logs one line per request once the response is written.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		slot := &actorSlot{}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), actorSlotKey{}, slot)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ctx := r.Context()
		if slot.id != 0 {
			ctx = logging.WithActorID(ctx, slot.id)
		}
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		log := logging.FromContext(ctx)
		switch {
		case status >= 500:
			log.Error("request", attrs...)
		case status >= 400:
			log.Warn("request", attrs...)
		default:
			log.Info("request", attrs...)
		}
	})
}
