// This package provides a set of structs and functions which are used
// to geolocate hostnames and IP addresses.
//
// geolib is core of the geolocator project. The rest of the application
// is an example of how to use this library: which providers to plug,
// which stores to use for caching, how to configure DNS resolution.
//
// Geolocator is a main entity of the geolib. It resolves a hostname,
// rejects local and private addresses, reads a cache and asks a
// provider only if cache has nothing to serve. Results are written back
// to the cache.
//
// There are 3 kinds of lookups: a flat one (v1 API), city and insights
// (v1.1 API). Cached insights records expire after a configured max
// age, other records live until they are removed explicitly.
//
// Geolocator can also act as a backend for http.Handler, see
// NewHTTPHandler.
package geolib
