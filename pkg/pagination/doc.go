// Package pagination warms the product page cache by querying a range of
// pages in parallel.
//
// Page 1 is queried first and alone so that a missing upstream token is
// obtained and persisted once; the remaining pages are then distributed
// across a bounded worker pool. Every query goes through the regular
// cache-first path, so pages that are still cached cost one Redis read.
//
// Example usage:
//
//	warmer := pagination.NewWarmer(service, pagination.DefaultConfig())
//	summary, err := warmer.Warm(ctx, 20)
//
// Failed pages are logged and counted; Warm returns the partial summary
// together with an error.
package pagination
