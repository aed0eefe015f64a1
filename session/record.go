package session

import (
	"encoding/json"
	"errors"
	"time"
)

// Record is one refresh-token session on one device. It is owned exclusively
// by the [Store]; the refresh manager reads and writes it only through the
// store's API. Records are never mutated in place — rotation writes a new
// record under a new token and destroys the old one.
type Record struct {
	UserID    string `json:"user_id"`
	Device    string `json:"device,omitempty"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// NewRecord builds a record for userID with an absolute TTL from now.
// The TTL is absolute from creation, not sliding.
func NewRecord(userID, device string, ttl time.Duration) *Record {
	now := time.Now()
	return &Record{
		UserID:    userID,
		Device:    device,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

// Expired reports whether the record's absolute expiry has passed at t.
func (r *Record) Expired(t time.Time) bool {
	return r.ExpiresAt <= t.Unix()
}

// Encode serializes a record for storage. The JSON shape is also parsed by
// the store's Lua scripts via cjson, so field names are part of the storage
// contract.
func Encode(rec *Record) ([]byte, error) {
	if rec == nil {
		return nil, errors.New("nil record")
	}
	if rec.UserID == "" {
		return nil, errors.New("record missing user id")
	}
	return json.Marshal(rec)
}

// Decode parses a stored record blob.
func Decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrRecordCorrupt
	}
	if rec.UserID == "" {
		return nil, ErrRecordCorrupt
	}
	return &rec, nil
}
