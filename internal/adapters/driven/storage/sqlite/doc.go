// Package sqlite provides SQLite-backed persistence for docbridge: the
// conflict resolution history and the local document snapshot used to
// prime the cache before the first full sync.
//
// A single Store owns the database handle; the individual driven
// interfaces are exposed through wrapper accessors.
package sqlite
