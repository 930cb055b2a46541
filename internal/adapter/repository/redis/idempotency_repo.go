package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okanin/payflow/internal/domain"
)

// IdempotencyRepository implements usecase.IdempotencyRepository over
// Redis. SETNX provides the atomic reservation; expiry is native Redis
// TTL, so a reused key past its TTL is simply absent.
type IdempotencyRepository struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(client *redis.Client) *IdempotencyRepository {
	return &IdempotencyRepository{
		client: client,
		prefix: "idempotency:",
	}
}

type storedRecord struct {
	Key          string    `json:"key"`
	UserID       string    `json:"user_id"`
	RequestPath  string    `json:"request_path"`
	RequestBody  []byte    `json:"request_body"`
	ResponseCode *int      `json:"response_code,omitempty"`
	ResponseBody []byte    `json:"response_body,omitempty"`
	TransferID   *string   `json:"transfer_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Reserve atomically inserts a placeholder record unless the key is live.
func (r *IdempotencyRepository) Reserve(ctx context.Context, record *domain.IdempotencyRecord) (bool, error) {
	data, err := json.Marshal(fromDomain(record))
	if err != nil {
		return false, err
	}

	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return false, errors.New("idempotency record already expired")
	}

	return r.client.SetNX(ctx, r.prefix+record.Key, data, ttl).Result()
}

// Find returns the live record for key, or (nil, nil) when none exists.
func (r *IdempotencyRepository) Find(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	return toDomain(&stored), nil
}

// Complete records the response on an existing reservation. The
// coordinator guarantees a single executor per key, so a plain
// read-modify-write is enough; a record that already carries a response
// is left untouched.
func (r *IdempotencyRepository) Complete(ctx context.Context, key string, code int, body []byte, transferID *string) error {
	fullKey := r.prefix + key

	data, err := r.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Reservation expired before completion; nothing to record.
		return nil
	}

	if err != nil {
		return err
	}

	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}

	if stored.ResponseCode != nil {
		return nil
	}

	stored.ResponseCode = &code
	stored.ResponseBody = body
	stored.TransferID = transferID

	updated, err := json.Marshal(&stored)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, fullKey, updated, redis.KeepTTL).Err()
}

// SweepExpired is a no-op: Redis reclaims expired keys itself.
func (r *IdempotencyRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func fromDomain(record *domain.IdempotencyRecord) *storedRecord {
	return &storedRecord{
		Key:          record.Key,
		UserID:       record.UserID,
		RequestPath:  record.RequestPath,
		RequestBody:  record.RequestBody,
		ResponseCode: record.ResponseCode,
		ResponseBody: record.ResponseBody,
		TransferID:   record.TransferID,
		CreatedAt:    record.CreatedAt,
		ExpiresAt:    record.ExpiresAt,
	}
}

func toDomain(stored *storedRecord) *domain.IdempotencyRecord {
	return &domain.IdempotencyRecord{
		Key:          stored.Key,
		UserID:       stored.UserID,
		RequestPath:  stored.RequestPath,
		RequestBody:  stored.RequestBody,
		ResponseCode: stored.ResponseCode,
		ResponseBody: stored.ResponseBody,
		TransferID:   stored.TransferID,
		CreatedAt:    stored.CreatedAt,
		ExpiresAt:    stored.ExpiresAt,
	}
}
