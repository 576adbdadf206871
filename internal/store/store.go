// Package store persists typed collections of records, one file per record
// type, with a process-wide read cache kept coherent with disk.
//
// A Store decides whether an incoming record replaces an existing one, is
// unchanged (no-op), or is newly inserted, under one of two identity
// strategies (see [Resolver]), then writes the full resulting collection
// back through the codec and file backend before updating the cache and
// notifying observers.
//
// # Concurrency
//
// Mutations for one type name are serialized by a per-name mutex owned by
// the shared [Cache]; the load-compute-write sequence of one mutation never
// interleaves with another on the same name. Mutations on distinct type
// names are independent. Once a mutation begins it runs to completion or
// failure; the context is used for log correlation, not cancellation.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"reflect"

	"github.com/recstore/recstore/internal/codec"
	"github.com/recstore/recstore/internal/fileio"
	"github.com/recstore/recstore/internal/notify"
)

// rawDumpLimit caps how much of a corrupt file is echoed into the log.
const rawDumpLimit = 1024

var (
	errBackendRequired = errors.New("backend is required")
	errCodecRequired   = errors.New("codec is required")
	errCacheRequired   = errors.New("cache is required")
	errNameRequired    = errors.New("type name could not be derived; set Options.Name")
)

// Options configures a Store.
type Options struct {
	// Name overrides the type name derived from T.
	Name string
	// Backend is the byte-level file store.
	Backend fileio.Backend
	// Codec serializes the full collection.
	Codec codec.Codec
	// Cache is the process-wide collection cache, shared across stores.
	Cache *Cache
	// Notifier is informed after each successful mutation. Defaults to
	// dropping notifications.
	Notifier notify.Notifier
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Verbose enables the DumpToLog diagnostic.
	Verbose bool
}

// Store persists the collection for one record type.
//
// T must be a value type with comparable fields; structural equality via ==
// is what decides whether an upsert is a no-op.
type Store[T comparable] struct {
	name     string
	backend  fileio.Backend
	codec    codec.Codec
	cache    *Cache
	resolver Resolver[T]
	notifier notify.Notifier
	logger   *slog.Logger
	verbose  bool
}

// New creates a Store for T with the given identity resolver.
func New[T comparable](resolver Resolver[T], opts Options) (*Store[T], error) {
	if opts.Backend == nil {
		return nil, errBackendRequired
	}
	if opts.Codec == nil {
		return nil, errCodecRequired
	}
	if opts.Cache == nil {
		return nil, errCacheRequired
	}
	name := opts.Name
	if name == "" {
		name = typeName[T]()
	}
	if name == "" {
		return nil, errNameRequired
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Discard{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{
		name:     name,
		backend:  opts.Backend,
		codec:    opts.Codec,
		cache:    opts.Cache,
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
		verbose:  opts.Verbose,
	}, nil
}

// Name returns the type name the store persists under.
func (s *Store[T]) Name() string {
	return s.name
}

// Path returns the file path backing the collection.
func (s *Store[T]) Path() string {
	return s.backend.Path(s.name)
}

// Load returns the current collection. A warm, non-empty cache entry is
// returned directly without touching disk; otherwise the file is read and
// decoded. A missing or empty file is a normal state and returns nil. A
// decode failure is logged with its classification and a best-effort text
// dump of the raw bytes, then degrades to nil: corrupt data reads as "no
// data yet" rather than failing the caller.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	return s.load(ctx)
}

// Upsert inserts rec, replaces the record it matches, or does nothing when
// the match is structurally identical. No-ops perform zero I/O and emit
// zero notifications.
func (s *Store[T]) Upsert(ctx context.Context, rec T) error {
	unlock := s.cache.lock(s.name)
	defer unlock()

	rows, err := s.load(ctx)
	if err != nil {
		return err
	}
	pos, found := s.resolver.locate(rows, rec)
	return s.apply(ctx, planUpsert(rows, rec, pos, found), rows)
}

// Delete removes the record rec matches. Deleting an absent record is a
// logged no-op, not an error.
func (s *Store[T]) Delete(ctx context.Context, rec T) error {
	unlock := s.cache.lock(s.name)
	defer unlock()

	rows, err := s.load(ctx)
	if err != nil {
		return err
	}
	pos, found := s.resolver.locate(rows, rec)
	return s.apply(ctx, planDelete[T](pos, found), rows)
}

// Exists reports whether a record matching rec is present.
func (s *Store[T]) Exists(ctx context.Context, rec T) (bool, error) {
	rows, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	_, found := s.resolver.locate(rows, rec)
	return found, nil
}

// DumpToLog writes the collection and its reflected schema to the log.
// Gated by Options.Verbose.
func (s *Store[T]) DumpToLog(ctx context.Context) {
	if !s.verbose {
		return
	}
	rows, err := s.load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "dump failed", "type", s.name, "err", err)
		return
	}
	cols, err := Describe[T]()
	if err != nil {
		s.logger.WarnContext(ctx, "schema reflection failed", "type", s.name, "err", err)
	}
	s.logger.InfoContext(ctx, "collection dump", "type", s.name, "path", s.Path(), "len", len(rows), "schema", cols)
	for i, row := range rows {
		s.logger.InfoContext(ctx, "record", "type", s.name, "index", i, "record", row)
	}
}

// load implements the cache-first read path.
func (s *Store[T]) load(ctx context.Context) ([]T, error) {
	if v, ok := s.cache.get(s.name); ok {
		if rows, ok := v.([]T); ok && len(rows) > 0 {
			return rows, nil
		}
	}
	data, err := s.backend.Read(s.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read collection %s: %w", s.name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var rows []T
	if err := s.codec.Decode(data, &rows); err != nil {
		kind := codec.KindUnknown
		if de := codec.AsDecodeError(err); de != nil {
			kind = de.Kind
		}
		raw := data
		if len(raw) > rawDumpLimit {
			raw = raw[:rawDumpLimit]
		}
		// Compatibility behavior: a corrupt file reads as absent. The next
		// successful write overwrites it, so the error log is the only
		// trace of the previous contents.
		s.logger.ErrorContext(ctx, "failed to decode collection",
			"type", s.name, "kind", string(kind), "err", err, "raw", string(raw))
		return nil, nil
	}
	s.cache.populateIfEmpty(s.name, rows)
	return rows, nil
}

// apply encodes and writes the resulting collection, then updates the cache
// and notifies. The write happens before the cache update: on failure the
// cache still agrees with disk.
func (s *Store[T]) apply(ctx context.Context, act action[T], rows []T) error {
	if act.kind == actionNoOp {
		s.logger.DebugContext(ctx, "mutation is a no-op", "type", s.name)
		return nil
	}
	next := act.materialize(rows)
	data, err := s.codec.Encode(next)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", s.name, err)
	}
	if err := s.backend.Write(s.name, data); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", s.name, err)
	}
	s.cache.set(s.name, next)
	s.notifier.Notify(s.name)
	s.logger.DebugContext(ctx, "collection updated",
		"type", s.name, "action", act.kind.String(), "len", len(next))
	return nil
}

// typeName derives the collection name from T.
func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
