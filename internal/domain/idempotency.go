package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"time"
)

// IdempotencyRecord tracks one logical attempt of a mutating request.
// The fingerprint (request path + body) is set once at creation; the
// response is set at most once, after the wrapped operation finishes.
type IdempotencyRecord struct {
	Key          string
	UserID       string
	RequestPath  string
	RequestBody  []byte
	ResponseCode *int
	ResponseBody []byte
	TransferID   *string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Completed reports whether a response has been recorded for this key.
func (r *IdempotencyRecord) Completed() bool {
	return r.ResponseCode != nil
}

// Expired reports whether the record is past its TTL at now.
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// MatchesRequest compares the stored fingerprint against the current
// request. A key presented by a different user is treated as a mismatch,
// since the reservation is global per key.
func (r *IdempotencyRecord) MatchesRequest(userID, path string, body []byte) bool {
	if r.UserID != userID {
		return false
	}

	if r.RequestPath != path {
		return false
	}

	return jsonBodyEqual(r.RequestBody, body)
}

// jsonBodyEqual compares two request bodies structurally, so that
// whitespace or key-order differences in the retry do not count as a
// different request. Non-JSON bodies fall back to byte equality.
func jsonBodyEqual(a, b []byte) bool {
	var av, bv any

	if err := json.Unmarshal(a, &av); err != nil {
		return bytes.Equal(a, b)
	}

	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}

	return reflect.DeepEqual(av, bv)
}
