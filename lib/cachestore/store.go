package cachestore

import (
	"bytes"
	"context"
	"encoding/gob"
	"strings"
	"time"

	"campusnet-client/lib/timezone"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cachestore")

// snapshot kinds, the first half of every cache key
const (
	KindSchedule  = "schedule"
	KindGrades    = "grades"
	KindSemesters = "semesters"
)

const DefaultTTL = time.Hour * 24

// Store is a TTL'd key value store for fetched portal snapshots,
// keyed by (kind, identifier). Values are gob-encoded; consumers
// only ever see the payload, never the write timestamp.
type Store struct {
	db  *badger.DB
	ttl map[string]time.Duration
	now func() time.Time
}

type Options struct {
	// per-kind TTL overrides, anything unlisted uses DefaultTTL
	TTL map[string]time.Duration
	// clock override for tests
	Now func() time.Time
}

func NewStore(db *badger.DB, opts Options) Store {
	now := opts.Now
	if now == nil {
		now = timezone.Now
	}
	return Store{
		db:  db,
		ttl: opts.TTL,
		now: now,
	}
}

func (s Store) ttlFor(kind string) time.Duration {
	if ttl, ok := s.ttl[kind]; ok {
		return ttl
	}
	return DefaultTTL
}

func (s Store) key(kind, identifier string) []byte {
	return []byte(kind + ":" + identifier)
}

type entry struct {
	WrittenAt int64
	Payload   []byte
}

// Get decodes the cached payload into out and reports whether a live
// entry existed. Entries older than the kind's TTL count as absent
// and are deleted on the way out.
func (s Store) Get(ctx context.Context, kind, identifier string, out any) (bool, error) {
	ctx, span := tracer.Start(ctx, "get")
	defer span.End()

	key := s.key(kind, identifier)
	span.SetAttributes(attribute.String("cache_key", string(key)))

	tx := s.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return false, err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to copy cached item")
		return false, err
	}

	var cached entry
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&cached)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached item")
		return false, err
	}

	age := s.now().Unix() - cached.WrittenAt
	if age > int64(s.ttlFor(kind)/time.Second) {
		span.SetStatus(codes.Ok, "CACHE EXPIRED")

		wtx := s.db.NewTransaction(true)
		defer wtx.Commit()
		err = wtx.Delete(key)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired key")
		}
		return false, nil
	}

	err = gob.NewDecoder(bytes.NewBuffer(cached.Payload)).Decode(out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize payload")
		return false, err
	}

	span.SetStatus(codes.Ok, "CACHE HIT")
	return true, nil
}

// Set overwrites unconditionally, stamping the current time.
func (s Store) Set(ctx context.Context, kind, identifier string, value any) error {
	ctx, span := tracer.Start(ctx, "set")
	defer span.End()

	key := s.key(kind, identifier)
	span.SetAttributes(attribute.String("cache_key", string(key)))

	payload := bytes.NewBuffer(nil)
	err := gob.NewEncoder(payload).Encode(value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize payload")
		return err
	}

	serialized := bytes.NewBuffer(nil)
	err = gob.NewEncoder(serialized).Encode(entry{
		WrittenAt: s.now().Unix(),
		Payload:   payload.Bytes(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize entry")
		return err
	}

	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	err = tx.Set(key, serialized.Bytes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}
	return tx.Commit()
}

// Clear removes the given identifiers of a kind, or every entry of
// the kind when no identifier is given.
func (s Store) Clear(ctx context.Context, kind string, identifiers ...string) error {
	ctx, span := tracer.Start(ctx, "clear")
	defer span.End()

	if len(identifiers) == 0 {
		all, err := s.Keys(ctx, kind)
		if err != nil {
			return err
		}
		identifiers = all
	}

	tx := s.db.NewTransaction(true)
	defer tx.Discard()
	for _, id := range identifiers {
		err := tx.Delete(s.key(kind, id))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete key")
			return err
		}
	}
	return tx.Commit()
}

// Keys lists the identifiers currently stored for a kind, expired
// entries included.
func (s Store) Keys(ctx context.Context, kind string) ([]string, error) {
	_, span := tracer.Start(ctx, "keys")
	defer span.End()

	prefix := kind + ":"

	tx := s.db.NewTransaction(false)
	defer tx.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)

	it := tx.NewIterator(opts)
	defer it.Close()

	var identifiers []string
	for it.Rewind(); it.Valid(); it.Next() {
		key := string(it.Item().KeyCopy(nil))
		identifiers = append(identifiers, strings.TrimPrefix(key, prefix))
	}
	return identifiers, nil
}
