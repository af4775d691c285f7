package services

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultGenerationTTL is how long an unsaved generation stays retrievable.
const DefaultGenerationTTL = time.Hour

type sessionEntry struct {
	ownerID    string
	generation *Generation
}

// GenerationStore keeps generated workflows for the session that created them
// until they are saved or expire.
type GenerationStore struct {
	cache *cache.Cache
}

// NewGenerationStore creates a store whose entries expire after ttl.
func NewGenerationStore(ttl time.Duration) *GenerationStore {
	if ttl <= 0 {
		ttl = DefaultGenerationTTL
	}

	return &GenerationStore{cache: cache.New(ttl, 2*ttl)}
}

// Put stores generation for ownerID. An empty ownerID makes it readable by
// anyone holding the id.
func (s *GenerationStore) Put(ownerID string, generation *Generation) {
	s.cache.SetDefault(generation.ID, &sessionEntry{ownerID: ownerID, generation: generation})
}

// Get returns the generation if viewerID may read it.
func (s *GenerationStore) Get(id, viewerID string) (*Generation, bool) {
	value, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}

	entry, ok := value.(*sessionEntry)
	if !ok || (entry.ownerID != "" && entry.ownerID != viewerID) {
		return nil, false
	}

	return entry.generation, true
}

// Delete drops a generation, typically once it has been persisted.
func (s *GenerationStore) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live generations.
func (s *GenerationStore) Len() int {
	return s.cache.ItemCount()
}
