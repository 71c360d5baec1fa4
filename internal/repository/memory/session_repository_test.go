package memory

import (
	"sync"
	"testing"
	"time"

	"finance-chatbot-be/pkg/store"
)

func TestGetCreatesSessionOnMiss(t *testing.T) {
	repo := NewSessionRepository(30*time.Minute, 5*time.Minute)

	s := repo.Get("u1")
	if s == nil {
		t.Fatal("expected a lazily created session")
	}
	if s.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", s.UserID)
	}
	if repo.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", repo.ActiveCount())
	}
}

func TestGetReturnsSameSession(t *testing.T) {
	repo := NewSessionRepository(30*time.Minute, 5*time.Minute)

	first := repo.Get("u1")
	first.Facts.Product = store.ProductVehicle

	second := repo.Get("u1")
	if second.Facts.Product != store.ProductVehicle {
		t.Error("second Get must return the same live session")
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	repo := NewSessionRepository(30*time.Minute, 5*time.Minute)

	repo.Update("u1", func(s *store.Session) {
		s.Facts.Nationality = store.NationalityExpat
	})

	if repo.Get("u2").Facts.Nationality != "" {
		t.Error("facts leaked across user sessions")
	}
	if repo.ActiveCount() != 2 {
		t.Errorf("ActiveCount = %d, want 2", repo.ActiveCount())
	}
}

func TestSessionExpiresAfterIdleTimeout(t *testing.T) {
	repo := NewSessionRepository(30*time.Millisecond, 10*time.Millisecond)

	repo.Update("u1", func(s *store.Session) {
		s.Facts.Product = store.ProductMarine
	})
	time.Sleep(100 * time.Millisecond)

	fresh := repo.Get("u1")
	if fresh.Facts.Product != "" {
		t.Error("expired session must be replaced with a fresh one")
	}
}

func TestDeleteRemovesSession(t *testing.T) {
	repo := NewSessionRepository(30*time.Minute, 5*time.Minute)

	repo.Get("u1")
	repo.Delete("u1")

	if repo.ActiveCount() != 0 {
		t.Errorf("ActiveCount after delete = %d, want 0", repo.ActiveCount())
	}
}

func TestUpdatesForDifferentUsersRunConcurrently(t *testing.T) {
	repo := NewSessionRepository(30*time.Minute, 5*time.Minute)

	const hold = 150 * time.Millisecond
	start := time.Now()
	var wg sync.WaitGroup
	for _, userID := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			repo.Update(id, func(s *store.Session) {
				time.Sleep(hold)
			})
		}(userID)
	}
	wg.Wait()

	if elapsed := time.Since(start); elapsed >= 2*hold {
		t.Errorf("updates for different users serialized: %v elapsed, want ~%v", elapsed, hold)
	}
}

func TestUpdatesForSameUserSerialize(t *testing.T) {
	repo := NewSessionRepository(30*time.Minute, 5*time.Minute)

	const hold = 50 * time.Millisecond
	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.Update("u1", func(s *store.Session) {
				time.Sleep(hold)
			})
		}()
	}
	wg.Wait()

	if elapsed := time.Since(start); elapsed < 2*hold {
		t.Errorf("updates for the same user overlapped: %v elapsed, want >= %v", elapsed, 2*hold)
	}
}

func TestUpdateIsAtomicUnderConcurrency(t *testing.T) {
	repo := NewSessionRepository(30*time.Minute, 5*time.Minute)

	const workers = 20
	const turnsPerWorker = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < turnsPerWorker; j++ {
				repo.Update("u1", func(s *store.Session) {
					s.AppendHistory("q", "a", "")
				})
			}
		}()
	}
	wg.Wait()

	s := repo.Get("u1")
	if len(s.History) != store.MaxHistoryTurns {
		t.Errorf("history length = %d, want the %d-turn cap", len(s.History), store.MaxHistoryTurns)
	}
}
