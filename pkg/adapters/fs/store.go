// Package fs implements core.DocumentStore on a directory tree.
//
// Every document is one file at {root}/{path}{ext}. Changes made by this
// process, by other processes, or by a sync tool replicating the directory
// between devices are pushed to watchers through fsnotify.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"

	"github.com/aretw0/notebox/pkg/core"
)

// DefaultSystemDir is the hidden directory holding the cache and other store internals.
const DefaultSystemDir = ".notebox"

// Config holds the configuration for the filesystem store.
type Config struct {
	Path         string
	SystemDir    string // e.g. ".notebox"
	MustExist    bool
	EventBuffer  int
	Serializer   Serializer
	Logger       *slog.Logger
	ErrorHandler func(error) // receives runtime watcher failures
}

// Store implements core.DocumentStore and core.Watchable using the filesystem.
type Store struct {
	Path       string
	config     Config
	serializer Serializer
	cache      *cache
	broker     *core.Broker
	logger     *slog.Logger

	writeMu sync.Mutex // serializes read-modify-write cycles

	mu            sync.RWMutex
	worker        *watchWorker
	watcherActive bool
	lastReconcile *time.Time
	closed        bool
}

// NewStore creates a new filesystem-backed store. Call Initialize before use.
func NewStore(config Config) *Store {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Serializer == nil {
		config.Serializer = NewMarkdownSerializer()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Store{
		Path:       config.Path,
		config:     config,
		serializer: config.Serializer,
		cache:      newCache(config.Path, config.SystemDir),
		broker:     core.NewBroker(config.EventBuffer, config.Logger),
		logger:     config.Logger,
	}
}

// Initialize creates the root directory and loads the parse cache.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", s.Path)
		}
		if err != nil {
			return transportErr("stat store path", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.Path)
		}
	} else if err := os.MkdirAll(s.Path, 0755); err != nil {
		return transportErr("create store directory", err)
	}

	if err := s.cache.Load(); err != nil {
		s.logger.Warn("cache load failed, starting empty", "error", err)
	}
	return nil
}

func transportErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, core.ErrTransport, err)
}

func (s *Store) check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.ErrClosed
	}
	return nil
}

func (s *Store) filePath(docPath string) string {
	return filepath.Join(s.Path, filepath.FromSlash(docPath)+s.serializer.Extension())
}

// docPathFor maps an absolute file path back to its document path.
func (s *Store) docPathFor(name string) (string, error) {
	rel, err := filepath.Rel(s.Path, name)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasSuffix(rel, s.serializer.Extension()) {
		return "", fmt.Errorf("not a document file: %s", name)
	}
	return strings.TrimSuffix(rel, s.serializer.Extension()), nil
}

// write serializes doc and replaces the file atomically.
func (s *Store) write(docPath string, doc core.Document) error {
	data, err := s.serializer.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	fullPath := s.filePath(docPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return transportErr("create directories", err)
	}
	if err := atomic.WriteFile(fullPath, bytes.NewReader(data)); err != nil {
		return transportErr("write file", err)
	}

	if info, err := os.Stat(fullPath); err == nil {
		s.cache.Set(docPath, doc, info.ModTime())
	} else {
		s.cache.Delete(docPath)
	}
	return nil
}

// read loads a document, preferring a fresh cache entry.
func (s *Store) read(docPath string) (core.Document, error) {
	fullPath := s.filePath(docPath)

	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, docPath)
		}
		return core.Document{}, transportErr("stat document", err)
	}
	if info.IsDir() {
		return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, docPath)
	}

	doc, hit := s.cache.Get(docPath, info.ModTime())
	if !hit {
		f, err := os.Open(fullPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, docPath)
			}
			return core.Document{}, transportErr("open document", err)
		}
		parsed, err := s.serializer.Parse(f)
		f.Close()
		if err != nil {
			return core.Document{}, fmt.Errorf("failed to parse document %s: %w", docPath, err)
		}
		doc = *parsed
		s.cache.Set(docPath, doc, info.ModTime())
	}

	_, doc.ID = core.Split(docPath)
	doc.Path = docPath
	return doc, nil
}

// Add persists doc under collection with a fresh ULID.
func (s *Store) Add(ctx context.Context, collection string, doc core.Document) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}
	if err := s.check(); err != nil {
		return core.Document{}, err
	}
	if err := core.ValidatePath(collection); err != nil {
		return core.Document{}, err
	}

	stored := doc.Clone()
	stored.ID = ulid.Make().String()
	stored.Path = core.Join(collection, stored.ID)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.write(stored.Path, stored); err != nil {
		return core.Document{}, err
	}
	s.logger.Debug("document added", "path", stored.Path)
	return stored, nil
}

// Get retrieves a document from the filesystem.
func (s *Store) Get(ctx context.Context, docPath string) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}
	if err := s.check(); err != nil {
		return core.Document{}, err
	}
	if err := core.ValidatePath(docPath); err != nil {
		return core.Document{}, err
	}
	return s.read(docPath)
}

// List reads every document file directly inside the collection directory.
// A missing directory is an empty collection.
func (s *Store) List(ctx context.Context, collection string) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := core.ValidatePath(collection); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.Path, filepath.FromSlash(collection)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []core.Document{}, nil
		}
		return nil, transportErr("read collection", err)
	}

	ext := s.serializer.Extension()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(ids)

	docs := make([]core.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.read(core.Join(collection, id))
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				continue // removed between ReadDir and read
			}
			if errors.Is(err, core.ErrTransport) {
				return nil, err
			}
			s.logger.Warn("skipping unparseable document", "collection", collection, "id", id, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Update merges patch into an existing document.
func (s *Store) Update(ctx context.Context, docPath string, patch core.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.check(); err != nil {
		return err
	}
	if err := core.ValidatePath(docPath); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.read(docPath)
	if err != nil {
		return err
	}
	doc.Apply(patch)
	if err := s.write(docPath, doc); err != nil {
		return err
	}
	s.logger.Debug("document updated", "path", docPath)
	return nil
}

// Delete removes a document file.
func (s *Store) Delete(ctx context.Context, docPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.check(); err != nil {
		return err
	}
	if err := core.ValidatePath(docPath); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := os.Remove(s.filePath(docPath)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", core.ErrNotFound, docPath)
		}
		return transportErr("remove file", err)
	}
	s.cache.Delete(docPath)
	s.logger.Debug("document deleted", "path", docPath)
	return nil
}

// Watch streams change events for document paths matching pattern.
// The first call starts the shared fsnotify worker.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, core.ErrClosed
	}
	if s.worker == nil {
		w := newWatchWorker(s)
		if err := w.Start(context.Background()); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.worker = w
		s.watcherActive = true
	}
	s.mu.Unlock()

	return s.broker.Subscribe(ctx, pattern)
}

// Close stops the watcher, closes all watch channels and persists the cache.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	w := s.worker
	s.worker = nil
	s.mu.Unlock()

	var errs []error
	if w != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, w.Stop(ctx))
		cancel()
	}
	s.broker.Close()
	errs = append(errs, s.cache.Save())
	return errors.Join(errs...)
}

var _ core.DocumentStore = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
