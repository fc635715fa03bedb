// Package cache provides the shared key-value store used for product pages
// and the upstream auth token.
//
// Components depend on the Store interface (get / set with TTL) so they can
// run against Redis in production and an in-memory fake in tests.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Store a page for one hour
//	err := cache.SetJSON(ctx, manager, cache.ProductPageKey(1), listings, time.Hour)
//
//	// Read it back
//	var listings []involve.ProductListing
//	err = cache.GetJSON(ctx, manager, cache.ProductPageKey(1), &listings)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch upstream
//	}
//
// # Keys
//
//   - products:page:<n> - JSON array of product listings for page n
//   - <provider>-auth-token - opaque upstream bearer token
//
// Writes are unconditional overwrites; entries expire passively through
// their TTL and are never invalidated explicitly.
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - cashback_cache_hits_total{keyspace} - Cache hits
//   - cashback_cache_misses_total{keyspace} - Cache misses
//   - cashback_cache_writes_total{keyspace} - Successful writes
//   - cashback_cache_errors_total{operation} - Cache operation errors
package cache
