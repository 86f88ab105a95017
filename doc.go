// Geocoder is a service which converts free-form queries (postal
// addresses or IP addresses) into locations and coordinates back into
// locations.
//
// Application is organized into 3 logical parts:
//
// # Geolib
//
// geolib is a main package of the application. It has a Provider
// contract, an error taxonomy, a Chain of fallback providers and a
// Cache which derives keys and delegates storage to a pluggable
// strategy. It also has its own HTTP API.
//
// # Providers and strategies
//
// providers package has adapters for real geocoding backends. strategies
// package has cache strategies: in-memory ones and redis.
//
// # Geocoder
//
// A main package itself is an example of how to wire everything
// together. It provides CLI which can either start HTTP server or
// resolve a single query.
package main
