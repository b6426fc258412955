// Geolocator is a service which tells where a given hostname or IP
// address is located.
//
// It resolves a hostname, asks a geolocation provider about resolved
// address and keeps answers in a cache, so the same address is asked
// only once (or once per insights max age).
//
// Tool itself is organized into several logical parts:
//
// Geolib
//
// geolib is a main package of the application. It contains Geolocator
// struct: lookup orchestration, hostname resolution, cache entry codec,
// batch lookups and HTTP API. Geolocator has pluggable provider, store
// and DNS resolver.
//
// Providers
//
// Implementations of providers: MaxMind web services and offline MMDB
// databases.
//
// Stores
//
// Implementations of cache stores: memory, Redis, Pebble and SQLite.
//
// DNS resolvers
//
// Operating system resolver, resolver which talks to DNS servers
// directly and a caching wrapper.
//
// Geolocator
//
// A main package itself wires everything together according to the
// config. Resulting binary starts http server and you can use it in
// your infrastructure as is.
package main
