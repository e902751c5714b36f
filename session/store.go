package session

import (
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store keeps sessions in memory and drops them after ttl of inactivity.
type Store struct {
	cache *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	cleanup := ttl / 6
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Store{
		cache: cache.New(ttl, cleanup),
	}
}

// Create registers a new session.
func (s *Store) Create() *Session {
	sess := New()
	s.cache.Set(sess.ID, sess, cache.DefaultExpiration)
	return sess
}

// Get returns the session and refreshes its expiry.
func (s *Store) Get(id string) (*Session, error) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	sess := x.(*Session)
	// Replace fails if the session was deleted since the lookup.
	if err := s.cache.Replace(id, sess, cache.DefaultExpiration); err != nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Store) Count() int {
	return s.cache.ItemCount()
}
