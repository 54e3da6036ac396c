// Package store holds the posts served by the fake API in memory.
package store

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/restdemo/resource"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the on-disk layout of a seed file.
type Seed struct {
	NextID int        `yaml:"next_id"`
	Posts  []SeedPost `yaml:"posts"`
}

// SeedPost is one seeded post. Fields keep the upstream key order.
type SeedPost struct {
	UserID int    `yaml:"userId"`
	ID     int    `yaml:"id"`
	Title  string `yaml:"title"`
	Body   string `yaml:"body"`
}

func (p SeedPost) payload() *resource.Payload {
	return resource.NewPayload().
		Set("userId", p.UserID).
		Set("id", p.ID).
		Set("title", p.Title).
		Set("body", p.Body)
}

// Store is a thread-safe in-memory post collection. Every value handed in
// or out is a copy.
type Store struct {
	mu     sync.RWMutex
	posts  map[int]*resource.Payload
	nextID int
}

// New creates a Store seeded from the embedded seed file.
func New() (*Store, error) {
	return NewFromYAML(defaultSeed)
}

// NewFromYAML creates a Store seeded from a YAML document.
func NewFromYAML(data []byte) (*Store, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("store: parse seed: %w", err)
	}

	s := &Store{
		posts:  make(map[int]*resource.Payload, len(seed.Posts)),
		nextID: seed.NextID,
	}
	maxID := 0
	for _, p := range seed.Posts {
		if p.ID <= 0 {
			return nil, fmt.Errorf("store: seed post %q has no positive id", p.Title)
		}
		if _, dup := s.posts[p.ID]; dup {
			return nil, fmt.Errorf("store: duplicate seed id %d", p.ID)
		}
		s.posts[p.ID] = p.payload()
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	if s.nextID <= maxID {
		s.nextID = maxID + 1
	}
	return s, nil
}

// List returns every post ordered by id.
func (s *Store) List() []*resource.Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.posts))
	for id := range s.posts {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]*resource.Payload, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.posts[id].Clone())
	}
	return out
}

// Get returns the post with the given id.
func (s *Store) Get(id int) (*resource.Payload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Create stores body under the next free id and returns it with "id" set.
func (s *Store) Create(body *resource.Payload) *resource.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	p := WithID(body, id)
	s.posts[id] = p
	return p.Clone()
}

// Replace swaps the post for body, keeping the id. It reports false when
// no post has that id.
func (s *Store) Replace(id int, body *resource.Payload) (*resource.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return nil, false
	}
	p := WithID(body, id)
	s.posts[id] = p
	return p.Clone(), true
}

// Patch merges the keys of body into the post. The id cannot be changed.
func (s *Store) Patch(id int, body *resource.Payload) (*resource.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.posts[id]
	if !ok {
		return nil, false
	}
	p := Merge(cur, body)
	s.posts[id] = p
	return p.Clone(), true
}

// Delete removes the post. It reports false when no post has that id.
func (s *Store) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return false
	}
	delete(s.posts, id)
	return true
}

// Has reports whether a post with the given id exists.
func (s *Store) Has(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.posts[id]
	return ok
}

// Count returns the number of stored posts.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// NextID returns the id the next Create will assign.
func (s *Store) NextID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// WithID returns a copy of body with "id" set to id.
func WithID(body *resource.Payload, id int) *resource.Payload {
	return body.Clone().Set("id", id)
}

// Merge returns a copy of cur with every key of patch applied, except "id".
func Merge(cur, patch *resource.Payload) *resource.Payload {
	p := cur.Clone()
	for _, k := range patch.Keys() {
		if k == "id" {
			continue
		}
		v, _ := patch.Get(k)
		p.Set(k, v)
	}
	return p
}
