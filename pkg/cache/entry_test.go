package cache

import (
	"encoding/json"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEntry_Expiration(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		offset      time.Duration
		wantExpired bool
		wantTTL     time.Duration
	}{
		{"one hour left", time.Hour, false, time.Hour},
		{"one second left", time.Second, false, time.Second},
		{"expires exactly now", 0, true, 0},
		{"expired an hour ago", -time.Hour, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: now.Add(tt.offset), now: fixedClock(now)}
			if got := entry.IsExpired(); got != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.wantExpired)
			}
			if got := entry.TTL(); got != tt.wantTTL {
				t.Errorf("TTL() = %v, want %v", got, tt.wantTTL)
			}
		})
	}
}

func TestEntry_IsHit(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)

	tests := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{
			name:  "new entry is never a hit",
			entry: Entry{Value: json.RawMessage(`{"a":1}`), Expires: future},
			want:  false,
		},
		{
			name:  "stored and fresh",
			entry: Entry{Value: json.RawMessage(`{"a":1}`), Expires: future, hit: true},
			want:  true,
		},
		{
			name:  "stored but expired",
			entry: Entry{Value: json.RawMessage(`{"a":1}`), Expires: now.Add(-time.Second), hit: true},
			want:  false,
		},
		{
			name:  "stored but empty",
			entry: Entry{Expires: future, hit: true},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.entry.now = fixedClock(now)
			if got := tt.entry.IsHit(); got != tt.want {
				t.Errorf("IsHit() = %v, want %v", got, tt.want)
			}
			if !tt.want && tt.entry.Get() != nil {
				t.Errorf("Get() = %s, want nil for a non-hit entry", tt.entry.Get())
			}
		})
	}
}

func TestEntry_SetExpiresAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := NewEntry("k")
	entry.now = fixedClock(now)

	entry.Set(json.RawMessage(`"v"`)).ExpiresAfter(100 * time.Second)

	if string(entry.Value) != `"v"` {
		t.Errorf("Value = %s, want \"v\"", entry.Value)
	}
	if want := now.Add(100 * time.Second); !entry.Expires.Equal(want) {
		t.Errorf("Expires = %v, want %v", entry.Expires, want)
	}
}
