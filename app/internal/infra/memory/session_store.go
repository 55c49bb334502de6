package memory

import (
	lru "github.com/hashicorp/golang-lru"

	storefrontuc "example.com/catalog-shop/app/internal/usecase/storefront"
)

// SessionStore keeps the most recently used sessions. A session that falls out
// of the cache, or is removed, is closed.
type SessionStore struct {
	cache *lru.Cache
}

func NewSessionStore(size int) (*SessionStore, error) {
	cache, err := lru.NewWithEvict(size, func(_, value interface{}) {
		if sess, ok := value.(*storefrontuc.Session); ok {
			sess.Close()
		}
	})
	if err != nil {
		return nil, err
	}
	return &SessionStore{cache: cache}, nil
}

func (s *SessionStore) Get(id string) (*storefrontuc.Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*storefrontuc.Session), true
}

func (s *SessionStore) Add(sess *storefrontuc.Session) {
	s.cache.Add(sess.ID(), sess)
}

func (s *SessionStore) Remove(id string) {
	s.cache.Remove(id)
}

func (s *SessionStore) Len() int {
	return s.cache.Len()
}
