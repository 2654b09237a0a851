// Package cache stores computed layouts so repeated requests for the same
// document and options skip the layout run.
//
// # Backends
//
// Four [Cache] implementations are available, selected by [Open] from the
// cache section of the configuration:
//
//   - [FileCache]: one file per entry below a directory, for the CLI
//   - [RedisCache]: shared entries for several server instances
//   - [MongoCache]: entries in a collection with a TTL index
//   - [DisabledCache]: stores nothing, for --no-cache and the none backend
//
// A miss is reported as ok == false with a nil error. Every backend except
// the disabled cache emits [observability.CacheHooks] events.
//
// # Keys
//
// A [Keyer] derives keys from the hash of the canonical document and the
// layout options that affect the result. Options are digested from their
// msgpack encoding. [WithNamespace] keeps deployments that share a backend
// apart; the cache section's namespace setting selects it.
//
// # Values
//
// Values are opaque bytes. [Encode] and [Decode] serialize structured values
// with msgpack, naming fields by their json tags.
package cache
