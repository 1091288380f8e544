package cache

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Key generates the deterministic cache key for a request path.
//
// The path must already be normalized (escaped, no query string). Only the
// path takes part in the key: GET requests are identified by path alone.
//
// Example:
//
//	Key("/dedicated/server/ns123.ip-1-2-3.eu") // 64 hex chars
func Key(path string) string {
	sum := blake3.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}
