package history

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jo-hoe/goimagine/internal/backend/storage"
	"github.com/samber/lo"
)

// SlotName is the key-value slot holding the JSON array of records.
const SlotName = "generated-images"

// Store is the newest-first generation history backed by a single
// key-value slot. Persistence is best effort: read and write failures are
// logged and never returned to the caller.
type Store struct {
	mu     sync.Mutex
	kv     storage.KeyValueStore
	images []GeneratedImage

	now           func() time.Time
	newID         func() string
	lastTimestamp int64
	// unsaved is set while the in-memory history is ahead of the slot
	// because the last write failed.
	unsaved bool
}

type Option func(*Store)

// WithClock replaces the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the record id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates a store on top of kv and loads the persisted history.
func NewStore(ctx context.Context, kv storage.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		images: []GeneratedImage{},
		now:    time.Now,
		newID:  generateID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(ctx)
	return s
}

// Load re-reads the persisted slot. A missing slot yields an empty history;
// an unreadable or corrupt slot keeps the last good in-memory value.
func (s *Store) Load(ctx context.Context) []GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)
	return slices.Clone(s.images)
}

// refresh replaces the in-memory history with the persisted slot so that
// writes from other processes sharing the storage are not overwritten.
// Unsaved in-memory changes win over the slot. Callers hold s.mu.
func (s *Store) refresh(ctx context.Context) {
	if s.unsaved {
		return
	}
	raw, err := s.kv.Get(ctx, SlotName)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		s.images = []GeneratedImage{}
	case err != nil:
		slog.Warn("history: failed to read slot, keeping last good value", "slot", SlotName, "error", err)
	default:
		var images []GeneratedImage
		if err := json.Unmarshal([]byte(raw), &images); err != nil {
			slog.Warn("history: slot is not valid JSON, keeping last good value", "slot", SlotName, "error", err)
			return
		}
		if images == nil {
			images = []GeneratedImage{}
		}
		s.images = images
		for _, img := range images {
			s.lastTimestamp = max(s.lastTimestamp, img.Timestamp)
		}
	}
}

// Images returns a copy of the history, newest first.
func (s *Store) Images() []GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.images)
}

// Add assigns an id and timestamp, prepends the record and persists the collection.
func (s *Store) Add(ctx context.Context, image NewImage) GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)
	timestamp := max(s.now().UnixMilli(), s.lastTimestamp)
	s.lastTimestamp = timestamp

	created := GeneratedImage{
		ID:         s.newID(),
		Prompt:     image.Prompt,
		ImageURL:   image.ImageURL,
		Timestamp:  timestamp,
		Dimensions: image.Dimensions,
		Style:      image.Style,
	}

	images := make([]GeneratedImage, 0, len(s.images)+1)
	images = append(images, created)
	images = append(images, s.images...)
	s.replace(ctx, images)

	slog.Debug("history: image added", "image_id", created.ID, "count", len(images))
	return created
}

// Remove drops the record with the given id. Unknown ids are ignored.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)
	s.replace(ctx, lo.Reject(s.images, func(img GeneratedImage, _ int) bool {
		return img.ID == id
	}))
}

// Clear empties the history.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)
	if len(s.images) == 0 {
		return
	}
	s.replace(ctx, []GeneratedImage{})
}

// Search returns the records whose prompt contains query, ignoring case,
// in history order. An empty query matches everything.
func (s *Store) Search(query string) []GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(query)
	return lo.Filter(s.images, func(img GeneratedImage, _ int) bool {
		return strings.Contains(strings.ToLower(img.Prompt), needle)
	})
}

// replace swaps in the new collection and writes it through. Callers hold s.mu.
func (s *Store) replace(ctx context.Context, images []GeneratedImage) {
	s.images = images

	data, err := json.Marshal(images)
	if err != nil {
		slog.Warn("history: failed to encode history", "error", err)
		s.unsaved = true
		return
	}
	if err := s.kv.Set(ctx, SlotName, string(data)); err != nil {
		slog.Warn("history: failed to persist history, continuing in memory", "slot", SlotName, "error", err)
		s.unsaved = true
		return
	}
	s.unsaved = false
}

// Page returns at most limit records and whether the input was truncated.
func Page(images []GeneratedImage, limit int) ([]GeneratedImage, bool) {
	if limit <= 0 || len(images) <= limit {
		return images, false
	}
	return images[:limit], true
}
