package cache

import (
	"encoding/json"
	"time"
)

// Entry is a cached API response.
//
// Entries are handed out by a Store's GetItem and written back with Save.
// Callers never touch the backing storage directly.
type Entry struct {
	// Key is the hashed request path (see Key)
	Key string `json:"key"`

	// Value is the raw JSON payload returned by the API
	Value json.RawMessage `json:"value"`

	// Expires is when the entry stops being served
	Expires time.Time `json:"expires"`

	hit bool
	now func() time.Time
}

// NewEntry returns an empty, non-hit entry for key.
func NewEntry(key string) *Entry {
	return &Entry{Key: key, now: time.Now}
}

// IsHit reports whether the entry was found in the store, is unexpired and
// carries a value.
func (e *Entry) IsHit() bool {
	return e.hit && len(e.Value) > 0 && !e.IsExpired()
}

// Get returns the cached value, or nil when the entry is not a hit.
func (e *Entry) Get() json.RawMessage {
	if !e.IsHit() {
		return nil
	}
	return e.Value
}

// Set replaces the value. It does not persist anything until Save is called.
func (e *Entry) Set(value json.RawMessage) *Entry {
	e.Value = value
	return e
}

// ExpiresAfter sets the expiration to now + ttl.
func (e *Entry) ExpiresAfter(ttl time.Duration) *Entry {
	e.Expires = e.clock()().Add(ttl)
	return e
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return !e.clock()().Before(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := e.Expires.Sub(e.clock()())
	if ttl < 0 {
		return 0
	}
	return ttl
}

func (e *Entry) clock() func() time.Time {
	if e.now == nil {
		return time.Now
	}
	return e.now
}
