package memory

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"finance-chatbot-be/pkg/store"
)

// ISessionRepository is the in-memory session store. Sessions are created
// lazily on first access and reaped by the cache janitor after the idle
// timeout. Calls for the same user serialize on a per-session lock; calls
// for different users share nothing but the cache index and run
// concurrently.
type ISessionRepository interface {
	Get(userID string) *store.Session
	Update(userID string, mutate func(*store.Session)) *store.Session
	Delete(userID string)
	ActiveCount() int
}

type sessionRepository struct {
	mu      sync.Mutex // guards locks only
	locks   map[string]*sync.Mutex
	cache   *gocache.Cache
	timeout time.Duration
}

func NewSessionRepository(timeout, sweepInterval time.Duration) ISessionRepository {
	return &sessionRepository{
		locks:   make(map[string]*sync.Mutex),
		cache:   gocache.New(timeout, sweepInterval),
		timeout: timeout,
	}
}

// Get returns the live session for the user, creating one on a miss. Access
// refreshes the idle timer.
func (r *sessionRepository) Get(userID string) *store.Session {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return r.get(userID)
}

// Update applies the mutation atomically with respect to other callers of
// the same session and refreshes the idle timer. A slow mutation for one
// user never blocks another user's turn.
func (r *sessionRepository) Update(userID string, mutate func(*store.Session)) *store.Session {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	session := r.get(userID)
	mutate(session)
	session.LastActivity = time.Now()
	r.cache.Set(userID, session, r.timeout)
	return session
}

func (r *sessionRepository) Delete(userID string) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	r.cache.Delete(userID)

	r.mu.Lock()
	delete(r.locks, userID)
	r.mu.Unlock()
}

// ActiveCount returns the number of unexpired sessions.
func (r *sessionRepository) ActiveCount() int {
	return r.cache.ItemCount()
}

func (r *sessionRepository) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[userID] = lock
	}
	return lock
}

func (r *sessionRepository) get(userID string) *store.Session {
	if cached, found := r.cache.Get(userID); found {
		session := cached.(*store.Session)
		r.cache.Set(userID, session, r.timeout)
		return session
	}
	session := &store.Session{
		UserID:       userID,
		LastActivity: time.Now(),
	}
	r.cache.Set(userID, session, r.timeout)
	return session
}
