package cache

import (
	"encoding/json"
	"time"
)

// entry is the stored form of a value in the file and bolt backends. Redis
// expires keys itself and stores raw bytes.
type entry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// encodeEntry wraps data with its expiry. A ttl of 0 never expires.
func encodeEntry(data []byte, ttl time.Duration) ([]byte, error) {
	e := entry{Data: data}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}
	return json.Marshal(e)
}

// decodeEntry returns the value in raw. ok is false when raw is corrupt or
// expired, and the caller should drop it.
func decodeEntry(raw []byte) (data []byte, ok bool) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		return nil, false
	}
	return e.Data, true
}
