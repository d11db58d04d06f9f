// Package brain implements the BrainRepository (spec.md §3, §4.3): the
// sole owner of every on-disk brain file and its in-memory cached
// document. Every other component — commands, the resolver, the
// filter engine, the export engine — reaches the data model only
// through a *Repository method.
//
// Writes follow the atomic commit protocol verbatim: load, mutate a
// copy, canonicalize, lock, write-to-tmp, fsync, verify, rename,
// unlock, emit storage.write_completed. Readers never take the lock.
// A brain file is read and parsed once and then served from the
// in-memory cache; the read is not checked against a hash and is not
// retried.
package brain
