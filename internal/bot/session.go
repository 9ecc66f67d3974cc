package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/listing-microservice/internal/domain/repository"
)

const sessionKeyPrefix = "bot:session:"

// SessionStore хранит состояние диалогов по chat id
type SessionStore interface {
	// Load возвращает nil, nil если сессии нет
	Load(ctx context.Context, chatID int64) (*Session, error)
	Save(ctx context.Context, chatID int64, s *Session) error
	Delete(ctx context.Context, chatID int64) error
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, chatID)
}

type cacheSessionStore struct {
	cache repository.CacheRepository
	ttl   time.Duration
}

// NewCacheSessionStore хранит сессии в кеше (Redis) с TTL
func NewCacheSessionStore(cache repository.CacheRepository, ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &cacheSessionStore{cache: cache, ttl: ttl}
}

func (s *cacheSessionStore) Load(ctx context.Context, chatID int64) (*Session, error) {
	raw, err := s.cache.Get(ctx, sessionKey(chatID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// битая сессия равна отсутствующей
		return nil, nil
	}
	return &sess, nil
}

func (s *cacheSessionStore) Save(ctx context.Context, chatID int64, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.cache.Set(ctx, sessionKey(chatID), raw, s.ttl)
}

func (s *cacheSessionStore) Delete(ctx context.Context, chatID int64) error {
	return s.cache.Delete(ctx, sessionKey(chatID))
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemorySessionStore - хранилище сессий в памяти процесса, когда Redis выключен
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemorySessionStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemorySessionStore) Load(_ context.Context, chatID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[chatID]
	if !ok {
		return nil, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, chatID)
		return nil, nil
	}
	sess := e.session
	return &sess, nil
}

func (m *MemorySessionStore) Save(_ context.Context, chatID int64, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[chatID] = memoryEntry{session: *sess, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, chatID)
	return nil
}
