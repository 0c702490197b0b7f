// Package cache holds fetched collections and entities keyed by resource kind
// and query parameters.
package cache

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/steemit/postsmanager/pkg/logging"
)

// Entry is a snapshot of one cached value
type Entry struct {
	Value     interface{}
	Stale     bool
	UpdatedAt time.Time
}

// PatchFunc computes the new value from the current one. It must not modify
// its argument in place.
type PatchFunc func(current interface{}) interface{}

// DecodeFunc rebuilds a typed value from its mirrored JSON form
type DecodeFunc func(data []byte) (interface{}, error)

type entry struct {
	mu        sync.Mutex
	value     interface{}
	stale     bool
	updatedAt time.Time
}

// Store is the in-memory resource cache. Entries live until invalidated or
// the process ends; there is no eviction.
type Store struct {
	mu        sync.RWMutex
	entries   map[Key]*entry
	decoders  map[Kind]DecodeFunc
	listeners []func(Key)
	mirror    *Redis
	now       func() time.Time
	logger    *zap.Logger
}

// NewStore creates an empty store. mirror may be nil.
func NewStore(mirror *Redis) *Store {
	return &Store{
		entries:  make(map[Key]*entry),
		decoders: make(map[Kind]DecodeFunc),
		mirror:   mirror,
		now:      time.Now,
		logger:   logging.WithComponent("resource-cache"),
	}
}

// RegisterKind enables mirroring for kind
func (s *Store) RegisterKind(kind Kind, decode DecodeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decoders[kind] = decode
}

// OnChange registers a listener called with the key of every written,
// patched or invalidated entry
func (s *Store) OnChange(fn func(Key)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Get returns the entry for key. A local miss falls back to the mirror.
func (s *Store) Get(key Key) (Entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		value, found := s.loadMirror(key)
		if !found {
			return Entry{}, false
		}
		e = s.insert(key, value)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return Entry{Value: e.value, Stale: e.stale, UpdatedAt: e.updatedAt}, true
}

// Set stores value under key as a fresh entry
func (s *Store) Set(key Key, value interface{}) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	e.value = value
	e.stale = false
	e.updatedAt = s.now()
	e.mu.Unlock()

	s.storeMirror(key, value)
	s.notify(key)
}

// insert adds a mirrored value unless another caller stored one first
func (s *Store) insert(key Key, value interface{}) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return e
	}
	e := &entry{value: value, updatedAt: s.now()}
	s.entries[key] = e
	return e
}

// Patch applies fn to the value under key. It is a no-op returning false
// when the key is absent.
func (s *Store) Patch(key Key, fn PatchFunc) bool {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	s.apply(key, e, fn)
	return true
}

// PatchMatching applies fn to every entry under prefix and returns how many were patched
func (s *Store) PatchMatching(prefix Key, fn PatchFunc) int {
	matched := s.matching(prefix)
	for key, e := range matched {
		s.apply(key, e, fn)
	}
	return len(matched)
}

func (s *Store) apply(key Key, e *entry, fn PatchFunc) {
	e.mu.Lock()
	next := fn(e.value)
	e.value = next
	e.updatedAt = s.now()
	e.mu.Unlock()

	s.storeMirror(key, next)
	s.notify(key)
}

// Invalidate marks every entry under prefix stale so that the next read
// refetches it. It returns how many entries were marked.
func (s *Store) Invalidate(prefix Key) int {
	matched := s.matching(prefix)
	for key, e := range matched {
		e.mu.Lock()
		e.stale = true
		e.mu.Unlock()
		s.notify(key)
	}

	if s.mirror != nil {
		s.invalidateMirror(prefix, matched)
	}

	s.logger.Debug("Invalidated cache entries", zap.String("prefix", prefix.String()), zap.Int("count", len(matched)))
	return len(matched)
}

// invalidateMirror drops mirrored entries under prefix. A prefix without
// parameters drops its whole kind, including entries this process never
// loaded; a narrower prefix drops only the locally matched keys since
// mirrored keys are hashed.
func (s *Store) invalidateMirror(prefix Key, matched map[Key]*entry) {
	pattern, keys, wide := mirrorTargets(prefix, matched)
	if wide {
		if _, err := s.mirror.DeletePrefix(pattern); err != nil {
			s.logger.Warn("Failed to invalidate mirrored entries", zap.String("prefix", prefix.String()), zap.Error(err))
		}
		return
	}
	for _, key := range keys {
		if err := s.mirror.Delete(key); err != nil {
			s.logger.Warn("Failed to invalidate mirrored entry", zap.String("key", key), zap.Error(err))
		}
	}
}

func mirrorTargets(prefix Key, matched map[Key]*entry) (pattern string, keys []string, wide bool) {
	if prefix == Prefix(prefix.Kind) {
		if prefix.Kind != "" {
			pattern = string(prefix.Kind) + ":"
		}
		return pattern, nil, true
	}
	keys = make([]string, 0, len(matched))
	for key := range matched {
		keys = append(keys, mirrorKey(key))
	}
	slices.Sort(keys)
	return "", keys, false
}

// Keys returns the keys under prefix in no particular order
func (s *Store) Keys(prefix Key) []Key {
	matched := s.matching(prefix)
	keys := make([]Key, 0, len(matched))
	for key := range matched {
		keys = append(keys, key)
	}
	return keys
}

func (s *Store) matching(prefix Key) map[Key]*entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make(map[Key]*entry)
	for key, e := range s.entries {
		if key.HasPrefix(prefix) {
			matched[key] = e
		}
	}
	return matched
}

func (s *Store) notify(key Key) {
	s.mu.RLock()
	listeners := append([]func(Key){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(key)
	}
}

func (s *Store) loadMirror(key Key) (interface{}, bool) {
	if s.mirror == nil {
		return nil, false
	}
	s.mu.RLock()
	decode, ok := s.decoders[key.Kind]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	var raw json.RawMessage
	if err := s.mirror.GetJSON(mirrorKey(key), &raw); err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Failed to read mirrored entry", zap.String("key", key.String()), zap.Error(err))
		}
		return nil, false
	}

	value, err := decode(raw)
	if err != nil {
		s.logger.Warn("Failed to decode mirrored entry", zap.String("key", key.String()), zap.Error(err))
		return nil, false
	}
	return value, true
}

func (s *Store) storeMirror(key Key, value interface{}) {
	if s.mirror == nil {
		return
	}
	s.mu.RLock()
	_, ok := s.decoders[key.Kind]
	s.mu.RUnlock()
	if !ok {
		return
	}

	if err := s.mirror.SetJSON(mirrorKey(key), value); err != nil {
		s.logger.Warn("Failed to mirror entry", zap.String("key", key.String()), zap.Error(err))
	}
}
