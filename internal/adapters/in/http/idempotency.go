package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replay"
	DefaultIdempotencyTTL  = 24 * time.Hour
)

// Idempotency replays the stored response of a POST carrying an
// Idempotency-Key header. Server errors are not stored, so the client may
// retry them with the same key. When the store is unavailable requests are
// served without replay protection.
func Idempotency(store ports.IdempotencyStore, ttl time.Duration, logger *slog.Logger) echo.MiddlewareFunc {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "idempotency")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			key := req.Header.Get(IdempotencyKeyHeader)
			if store == nil || key == "" || req.Method != http.MethodPost {
				return next(c)
			}

			body, err := io.ReadAll(req.Body)
			if err != nil {
				return writeError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			fingerprint := requestFingerprint(req.Method, req.URL.Path, body)

			ctx := req.Context()
			stored, err := store.Reserve(ctx, key, fingerprint, ttl)
			switch {
			case errors.Is(err, ports.ErrIdempotencyKeyInFlight), errors.Is(err, ports.ErrIdempotencyKeyReused):
				return writeError(c, err)
			case err != nil:
				logger.WarnContext(ctx, "idempotency store unavailable, serving without replay",
					slog.String("key", key),
					slog.String("error", err.Error()),
				)
				return next(c)
			case stored != nil:
				c.Response().Header().Set(IdempotentReplayHeader, "true")
				return c.Blob(stored.StatusCode, stored.ContentType, stored.Body)
			}

			// A panicking handler must not leave the key reserved until it expires.
			defer func() {
				if r := recover(); r != nil {
					release(ctx, store, key, logger)
					panic(r)
				}
			}()

			recorder := &responseRecorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = recorder

			handlerErr := next(c)
			if handlerErr != nil {
				// Let the error handler render the response so it can be captured.
				c.Error(handlerErr)
			}

			status := c.Response().Status
			if status >= http.StatusInternalServerError || !c.Response().Committed {
				release(ctx, store, key, logger)
				return nil
			}

			response := ports.StoredResponse{
				StatusCode:  status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        recorder.body.Bytes(),
			}
			if err := store.Complete(ctx, key, fingerprint, response, ttl); err != nil {
				logger.WarnContext(ctx, "store idempotent response", slog.String("key", key), slog.String("error", err.Error()))
			}
			return nil
		}
	}
}

func release(ctx context.Context, store ports.IdempotencyStore, key string, logger *slog.Logger) {
	if err := store.Release(ctx, key); err != nil {
		logger.WarnContext(ctx, "release idempotency key", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func requestFingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// responseRecorder copies the response body while it is written to the client.
type responseRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
