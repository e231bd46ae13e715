// Package store persists the layout collection.
//
// # Backends
//
// The collection is saved wholesale as one JSON array under the key
// [Key] in a [Backend]:
//
//   - [MemoryBackend]: process memory, for tests and throwaway sessions
//   - [FileBackend]: one JSON file per key under the XDG data directory
//   - [SQLiteBackend]: a key/value table in a local SQLite database
//   - [RedisBackend]: a Redis string per key
//   - [MongoBackend]: one document per key
//
// [Open] picks a backend by name, the way the CLI configures it.
//
// # Loading
//
// [Collection.Load] tries, in order: the persisted blob (if it decodes to at
// least one layout), the [RemoteSource] default set, and finally a single
// synthetic empty layout. Every mutating method saves the whole collection
// again.
package store
