package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/okanin/payflow/internal/domain"
)

// MutationRequest identifies one inbound mutating request for
// deduplication purposes.
type MutationRequest struct {
	Key    string
	UserID string
	Path   string
	Body   []byte
}

// Outcome is the response produced by a wrapped operation.
type Outcome struct {
	Status     int
	Body       []byte
	TransferID *string
}

// Verdict is the coordinator's decision for one request.
type Verdict struct {
	// Execute is true when the wrapped operation should run.
	Execute bool
	// Record is true when Finish must be called with the operation's
	// outcome. It is false on the no-key path and in degraded mode.
	Record bool
	// Replay holds the stored outcome when the request is a recognized
	// retry of a completed operation.
	Replay *Outcome
}

// Coordinator mediates between mutating requests and the operations
// they trigger, guaranteeing at-most-once execution per idempotency
// key and byte-identical response replay.
//
// The protocol is two-phase: Begin before running the operation,
// Finish after it returns. If the idempotency store is unavailable,
// Begin fails open: the operation runs without a dedup guarantee for
// that single request.
type Coordinator struct {
	store  IdempotencyRepository
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(store IdempotencyRepository, ttl time.Duration, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Begin decides how to treat an inbound mutating request.
//
// Possible results:
//   - no key supplied: execute without dedup.
//   - malformed key: domain.ErrIdempotencyKeyInvalid, nothing touched.
//   - new key: reservation created, execute and record.
//   - known key, different fingerprint: domain.ErrIdempotencyMismatch.
//   - known key, completed: replay the stored outcome.
//   - known key, still in flight: domain.ErrIdempotencyInProgress.
func (c *Coordinator) Begin(ctx context.Context, req MutationRequest) (Verdict, error) {
	if req.Key == "" {
		return Verdict{Execute: true}, nil
	}

	if err := domain.ValidateIdempotencyKey(req.Key); err != nil {
		return Verdict{}, err
	}

	now := time.Now().UTC()

	record := &domain.IdempotencyRecord{
		Key:         req.Key,
		UserID:      req.UserID,
		RequestPath: req.Path,
		RequestBody: req.Body,
		CreatedAt:   now,
		ExpiresAt:   now.Add(c.ttl),
	}

	created, err := c.store.Reserve(ctx, record)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", req.Key).
			Msg("idempotency store unavailable, proceeding without dedup")

		return Verdict{Execute: true}, nil
	}

	if created {
		return Verdict{Execute: true, Record: true}, nil
	}

	existing, err := c.store.Find(ctx, req.Key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", req.Key).
			Msg("idempotency lookup failed, proceeding without dedup")

		return Verdict{Execute: true}, nil
	}

	if existing == nil {
		// The record expired between the reservation attempt and the
		// lookup. Treat the request as a fresh one without dedup.
		return Verdict{Execute: true}, nil
	}

	if !existing.MatchesRequest(req.UserID, req.Path, req.Body) {
		return Verdict{}, domain.ErrIdempotencyMismatch
	}

	if existing.Completed() {
		return Verdict{
			Replay: &Outcome{
				Status:     *existing.ResponseCode,
				Body:       existing.ResponseBody,
				TransferID: existing.TransferID,
			},
		}, nil
	}

	return Verdict{}, domain.ErrIdempotencyInProgress
}

// Finish records the outcome of an executed operation on its
// reservation. Server-side failures are not recorded, so a retry after
// an infrastructure error gets a fresh execution once the reservation
// expires. Store errors are logged and swallowed; the response already
// belongs to the caller.
func (c *Coordinator) Finish(ctx context.Context, req MutationRequest, out Outcome) {
	if out.Status >= http.StatusInternalServerError {
		return
	}

	if err := c.store.Complete(ctx, req.Key, out.Status, out.Body, out.TransferID); err != nil {
		c.logger.Warn().Err(err).Str("key", req.Key).
			Msg("failed to record idempotent response")
	}
}

// SweepExpired removes idempotency records past their TTL.
func (c *Coordinator) SweepExpired(ctx context.Context) (int64, error) {
	return c.store.SweepExpired(ctx, time.Now().UTC())
}
