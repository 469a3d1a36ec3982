// Package memory provides an in-process core.DocumentStore with change
// notifications. It is the default store for tests and ephemeral sessions.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/aretw0/notebox/pkg/core"
)

// Config holds the configuration for the memory store.
type Config struct {
	EventBuffer int
	Logger      *slog.Logger
}

// Store implements core.DocumentStore and core.Watchable in memory.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]core.Document // full path -> document
	broker  *core.Broker
	logger  *slog.Logger
	offline bool
	closed  bool
}

// New creates an empty memory store.
func New(config Config) *Store {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		docs:   make(map[string]core.Document),
		broker: core.NewBroker(config.EventBuffer, logger),
		logger: logger,
	}
}

// Initialize implements core.DocumentStore. The memory store needs no setup.
func (s *Store) Initialize(ctx context.Context) error {
	return s.check()
}

// SetOffline makes every operation fail with core.ErrTransport until reset.
// It simulates an unreachable remote.
func (s *Store) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

func (s *Store) check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkLocked()
}

func (s *Store) checkLocked() error {
	if s.closed {
		return core.ErrClosed
	}
	if s.offline {
		return fmt.Errorf("%w: memory store is offline", core.ErrTransport)
	}
	return nil
}

// Add stores doc under collection with a fresh ULID.
func (s *Store) Add(ctx context.Context, collection string, doc core.Document) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}
	if err := core.ValidatePath(collection); err != nil {
		return core.Document{}, err
	}

	stored := doc.Clone()
	stored.ID = ulid.Make().String()
	stored.Path = core.Join(collection, stored.ID)

	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return core.Document{}, err
	}
	s.docs[stored.Path] = stored
	s.mu.Unlock()

	s.publish(core.EventCreate, stored.Path)
	return stored.Clone(), nil
}

// Get retrieves a document by path.
func (s *Store) Get(ctx context.Context, docPath string) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}
	if err := core.ValidatePath(docPath); err != nil {
		return core.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkLocked(); err != nil {
		return core.Document{}, err
	}
	doc, ok := s.docs[docPath]
	if !ok {
		return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, docPath)
	}
	return doc.Clone(), nil
}

// List returns the direct children of collection ordered by ID.
func (s *Store) List(ctx context.Context, collection string) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := core.ValidatePath(collection); err != nil {
		return nil, err
	}

	prefix := collection + "/"
	s.mu.RLock()
	if err := s.checkLocked(); err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	docs := make([]core.Document, 0)
	for p, doc := range s.docs {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		docs = append(docs, doc.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Update merges patch into the document at docPath.
func (s *Store) Update(ctx context.Context, docPath string, patch core.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidatePath(docPath); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	doc, ok := s.docs[docPath]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", core.ErrNotFound, docPath)
	}
	doc = doc.Clone()
	doc.Apply(patch)
	s.docs[docPath] = doc
	s.mu.Unlock()

	s.publish(core.EventModify, docPath)
	return nil
}

// Delete removes the document at docPath.
func (s *Store) Delete(ctx context.Context, docPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidatePath(docPath); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, ok := s.docs[docPath]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", core.ErrNotFound, docPath)
	}
	delete(s.docs, docPath)
	s.mu.Unlock()

	s.publish(core.EventDelete, docPath)
	return nil
}

// Watch implements core.Watchable.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.broker.Subscribe(ctx, pattern)
}

// Close closes every watch channel. Further operations return core.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.broker.Close()
	return nil
}

func (s *Store) publish(t core.EventType, docPath string) {
	s.logger.Debug("document changed", "type", t, "path", docPath)
	s.broker.Publish(core.Event{
		Type:      t,
		Path:      docPath,
		Timestamp: time.Now().Unix(),
	})
}

var _ core.DocumentStore = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
