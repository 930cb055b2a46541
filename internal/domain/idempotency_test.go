package domain

import (
	"testing"
	"time"
)

func TestIdempotencyRecord_MatchesRequest(t *testing.T) {
	record := IdempotencyRecord{
		Key:         "key-1234567890",
		UserID:      "user-1",
		RequestPath: "/api/v1/transfers",
		RequestBody: []byte(`{"recipient_email":"bob@example.com","amount":"25.00"}`),
	}

	tests := []struct {
		name   string
		userID string
		path   string
		body   []byte
		want   bool
	}{
		{
			name:   "identical request",
			userID: "user-1",
			path:   "/api/v1/transfers",
			body:   []byte(`{"recipient_email":"bob@example.com","amount":"25.00"}`),
			want:   true,
		},
		{
			name:   "same JSON with different key order and whitespace",
			userID: "user-1",
			path:   "/api/v1/transfers",
			body:   []byte(`{ "amount": "25.00", "recipient_email": "bob@example.com" }`),
			want:   true,
		},
		{
			name:   "different body",
			userID: "user-1",
			path:   "/api/v1/transfers",
			body:   []byte(`{"recipient_email":"bob@example.com","amount":"30.00"}`),
			want:   false,
		},
		{
			name:   "different path",
			userID: "user-1",
			path:   "/api/v1/other",
			body:   []byte(`{"recipient_email":"bob@example.com","amount":"25.00"}`),
			want:   false,
		},
		{
			name:   "same request from a different user",
			userID: "user-2",
			path:   "/api/v1/transfers",
			body:   []byte(`{"recipient_email":"bob@example.com","amount":"25.00"}`),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := record.MatchesRequest(tt.userID, tt.path, tt.body); got != tt.want {
				t.Errorf("MatchesRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdempotencyRecord_MatchesRequest_NonJSON(t *testing.T) {
	record := IdempotencyRecord{
		UserID:      "user-1",
		RequestPath: "/api/v1/transfers",
		RequestBody: []byte("not json"),
	}

	if !record.MatchesRequest("user-1", "/api/v1/transfers", []byte("not json")) {
		t.Error("expected byte-equal non-JSON bodies to match")
	}

	if record.MatchesRequest("user-1", "/api/v1/transfers", []byte("other")) {
		t.Error("expected different non-JSON bodies not to match")
	}
}

func TestIdempotencyRecord_Completed(t *testing.T) {
	record := IdempotencyRecord{}

	if record.Completed() {
		t.Error("expected fresh reservation not to be completed")
	}

	code := 201
	record.ResponseCode = &code

	if !record.Completed() {
		t.Error("expected record with response code to be completed")
	}
}

func TestIdempotencyRecord_Expired(t *testing.T) {
	now := time.Now().UTC()
	record := IdempotencyRecord{ExpiresAt: now.Add(time.Hour)}

	if record.Expired(now) {
		t.Error("expected record not to be expired before its TTL")
	}

	if !record.Expired(now.Add(time.Hour)) {
		t.Error("expected record to be expired at its TTL boundary")
	}

	if !record.Expired(now.Add(2 * time.Hour)) {
		t.Error("expected record to be expired after its TTL")
	}
}
