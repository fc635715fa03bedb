package cache

import (
	"strconv"
	"strings"
)

const (
	// ProductPagePrefix prefixes every cached product page key.
	ProductPagePrefix = "products:page:"

	// AuthTokenSuffix is appended to the provider name to form the token key.
	AuthTokenSuffix = "-auth-token"
)

// ProductPageKey returns the key of the cached listings for page.
//
// Example:
//
//	products:page:3
func ProductPageKey(page int) string {
	return ProductPagePrefix + strconv.Itoa(page)
}

// AuthTokenKey returns the key holding the shared upstream token of provider.
//
// Example:
//
//	involve-asia-auth-token
func AuthTokenKey(provider string) string {
	return provider + AuthTokenSuffix
}

// keyspace labels a key for metrics without leaking page numbers into label values.
func keyspace(key string) string {
	switch {
	case strings.HasPrefix(key, ProductPagePrefix):
		return "products"
	case strings.HasSuffix(key, AuthTokenSuffix):
		return "token"
	default:
		return "other"
	}
}
