package otp

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/govind/worker-portal-back/internal/domain"
)

// Entry holds a pending registration together with its verification
// code. Entries are single use: a successful verification deletes the
// entry, and expiry is enforced on read.
type Entry struct {
	Code         string
	Registration domain.Registration
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

type Config struct {
	TTL        time.Duration
	MaxEntries int
}

// Store is an explicit keyed TTL store for verification state, passed
// to the handlers that need it rather than living in process globals.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	ttl        time.Duration
	maxEntries int
}

func NewStore(config Config) *Store {
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1000
	}
	return &Store{
		entries:    make(map[string]Entry),
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
	}
}

func (s *Store) Put(phone, code string, registration domain.Registration) {
	now := time.Now().UTC()
	entry := Entry{
		Code:         code,
		Registration: registration,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[phone]; !exists && len(s.entries) >= s.maxEntries {
		s.evictOldest()
	}
	s.entries[phone] = entry
}

func (s *Store) Get(phone string) (Entry, bool) {
	s.mu.RLock()
	entry, exists := s.entries[phone]
	s.mu.RUnlock()

	if !exists {
		return Entry{}, false
	}
	if time.Now().UTC().After(entry.ExpiresAt) {
		s.mu.Lock()
		delete(s.entries, phone)
		s.mu.Unlock()
		return Entry{}, false
	}
	return entry, true
}

func (s *Store) Delete(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
}

func (s *Store) evictOldest() {
	if len(s.entries) == 0 {
		return
	}

	type pair struct {
		key   string
		value Entry
	}
	pairs := make([]pair, 0, len(s.entries))
	for key, value := range s.entries {
		pairs = append(pairs, pair{key: key, value: value})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value.CreatedAt.Before(pairs[j].value.CreatedAt)
	})
	delete(s.entries, pairs[0].key)
}

// GenerateCode returns a numeric verification code of the given length.
func GenerateCode(length int) string {
	if length <= 0 {
		length = 6
	}
	const digits = "0123456789"
	code := make([]byte, length)
	for index := range code {
		code[index] = digits[rand.Intn(len(digits))]
	}
	return string(code)
}
