package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okanin/payflow/internal/adapter/http/dto"
	"github.com/okanin/payflow/internal/domain"
	"github.com/okanin/payflow/internal/infrastructure/metrics"
	"github.com/okanin/payflow/internal/usecase"
)

// Accepted header names for the client-supplied idempotency key.
// Header lookup is case-insensitive per net/http canonicalization.
const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotencyKeyHeaderAlt = "X-Idempotency-Key"

	// ReplayHeader marks a response served from the idempotency cache.
	ReplayHeader = "X-Idempotency-Replay"
)

// maxFingerprintBodyBytes caps how much of a request body is buffered
// for fingerprinting.
const maxFingerprintBodyBytes = 1 << 20

// IdempotencyMiddleware deduplicates mutating requests through the
// coordinator's two-phase protocol: Begin before the handler runs,
// Finish with the captured response after it returns.
type IdempotencyMiddleware struct {
	coordinator *usecase.Coordinator
	metrics     *metrics.Metrics
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(coordinator *usecase.Coordinator, m *metrics.Metrics) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{
		coordinator: coordinator,
		metrics:     m,
	}
}

// Wrap wraps an http.Handler with idempotency coordination.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			key = r.Header.Get(IdempotencyKeyHeaderAlt)
		}

		if key == "" {
			// No key: execute normally, no dedup guarantee.
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFingerprintBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				m.writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "")
				return
			}
			m.writeError(w, http.StatusBadRequest, "failed to read request body", "")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var userID string

		if account, ok := AccountFromContext(r.Context()); ok {
			userID = account.ID
		}

		req := usecase.MutationRequest{
			Key:    key,
			UserID: userID,
			Path:   r.URL.Path,
			Body:   body,
		}

		verdict, err := m.coordinator.Begin(r.Context(), req)
		if err != nil {
			m.writeBeginError(w, err)
			return
		}

		if verdict.Replay != nil {
			m.metrics.IdempotencyReplays.Inc()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(ReplayHeader, "true")
			w.WriteHeader(verdict.Replay.Status)
			w.Write(verdict.Replay.Body)

			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		if verdict.Record {
			m.coordinator.Finish(r.Context(), req, usecase.Outcome{
				Status:     recorder.statusCode,
				Body:       recorder.body.Bytes(),
				TransferID: extractTransferID(recorder.body.Bytes()),
			})
		}
	})
}

func (m *IdempotencyMiddleware) writeBeginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrIdempotencyKeyInvalid):
		m.metrics.IdempotencyConflicts.WithLabelValues("invalid_key").Inc()
		m.writeError(w, http.StatusBadRequest, "invalid idempotency key", err.Error())
	case errors.Is(err, domain.ErrIdempotencyMismatch):
		m.metrics.IdempotencyConflicts.WithLabelValues("mismatch").Inc()
		m.writeError(w, http.StatusUnprocessableEntity, "idempotency key conflict", err.Error())
	case errors.Is(err, domain.ErrIdempotencyInProgress):
		m.metrics.IdempotencyConflicts.WithLabelValues("in_progress").Inc()
		m.writeError(w, http.StatusConflict, "request in progress", err.Error())
	default:
		m.writeError(w, http.StatusInternalServerError, "idempotency check failed", "")
	}
}

func (m *IdempotencyMiddleware) writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{Error: message, Message: details})
}

// extractTransferID pulls the transfer ID out of a success envelope so
// the idempotency record can reference the transfer it produced.
func extractTransferID(body []byte) *string {
	var envelope struct {
		Transfer struct {
			ID string `json:"id"`
		} `json:"transfer"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	if envelope.Transfer.ID == "" {
		return nil
	}

	return &envelope.Transfer.ID
}

type responseRecorder struct {
	http.ResponseWriter

	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
