// Package strategies has implementations of geolib.CacheStrategy.
//
// None of them caches errors: if producer fails, its error is returned
// as is and nothing is stored, so the next call asks a delegate again.
package strategies
