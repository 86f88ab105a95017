// Package geolib resolves location queries into structured geographic
// data with a help of interchangeable providers.
//
// A query is an address, an IP address or a pair of coordinates. Each
// backend is a Provider. Providers are composable: Chain tries its
// members one by one until one of them succeeds, Cache memoizes lookups
// of a single delegate with a help of pluggable CacheStrategy. Both are
// providers too, so it is possible to put a cache around a chain, make a
// chain of caches or nest chains.
//
// Failures are tagged with ErrorKind. A lookup never returns an empty
// result without an error: absence of results is KindNoResult. If all
// members of a chain fail, ChainError with every failure in the order
// members were tried is returned.
//
// Leaf providers should embed Base. It gives rate limits and a mandatory
// short-circuit for loopback addresses.
package geolib
