// Package cache provides persistent storage for OVH API responses.
//
// Entries are keyed by a hash of the normalized request path and carry an
// absolute expiration. Two backends implement Store:
//
//   - FileStore: one JSON file per entry under a local directory (default)
//   - RedisStore: entries under the "ovhcli:" prefix with native Redis TTLs
//
// # Basic Usage
//
//	store, err := cache.NewFileStore("")
//	if err != nil {
//		return err
//	}
//
//	key := cache.Key("/dedicated/server/ns123.ip-1-2-3.eu")
//	item, err := store.GetItem(ctx, key)
//	if err != nil {
//		return err
//	}
//	if !item.IsHit() {
//		item.Set(payload).ExpiresAfter(24 * time.Hour)
//		if err := store.Save(ctx, item); err != nil {
//			return err
//		}
//	}
//
// # Selecting a backend
//
//	store, closeStore, err := cache.Open(ctx, cache.Options{
//		Backend:   cache.BackendRedis,
//		RedisAddr: "localhost:6379",
//	})
//	defer closeStore()
//
// # Metrics
//
//   - ovhcli_cache_hits_total{store} - Cache hits
//   - ovhcli_cache_misses_total - Cache misses
//   - ovhcli_cache_size_bytes{store} - Bytes written
//   - ovhcli_cache_invalidations_total{reason} - Entries removed by the proxy
//   - ovhcli_cache_errors_total{operation} - Store errors
//
// Concurrent processes sharing a store are not coordinated; the last
// writer wins.
package cache
