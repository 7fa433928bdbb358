// Package audit records who did what. Lines are persisted append-only and
// mirrored into a bounded in-memory ring so dashboards can show recent
// activity without hitting the database.
package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/shared"
)

const defaultRingSize = 256

// Service records and queries activity.
type Service struct {
	repo   audit.ActivityRepository
	logger *zap.Logger

	mu   sync.RWMutex
	ring []*audit.Activity
	next int
	full bool
}

// NewService wires the audit service with a ring of the given capacity
// (a default is applied when size is not positive).
func NewService(repo audit.ActivityRepository, size int, logger *zap.Logger) *Service {
	if size <= 0 {
		size = defaultRingSize
	}
	return &Service{
		repo:   repo,
		logger: logger,
		ring:   make([]*audit.Activity, size),
	}
}

// Warm fills the ring with the newest persisted lines so Recent serves
// history from before the current process started.
func (s *Service) Warm(ctx context.Context) error {
	latest, err := s.repo.Latest(ctx, len(s.ring))
	if err != nil {
		return err
	}
	// Latest returns newest first; insert oldest first so ring order
	// matches Record.
	for i := len(latest) - 1; i >= 0; i-- {
		s.push(latest[i])
	}
	s.logger.Info("activity ring warmed", zap.Int("lines", len(latest)))
	return nil
}

// Record mirrors a committed activity line into the ring. Lines are
// persisted inside the business transaction that produced them; the scope
// reports them here once that transaction commits, so the ring never holds
// a line that was rolled back.
func (s *Service) Record(activity *audit.Activity) {
	s.push(activity)
}

func (s *Service) push(activity *audit.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring[s.next] = activity
	s.next++
	if s.next == len(s.ring) {
		s.next = 0
		s.full = true
	}
}

// Recent returns up to limit most recent in-memory lines for a company,
// newest first.
func (s *Service) Recent(companyID uuid.UUID, limit int) []*audit.Activity {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := len(s.ring)
	count := s.next
	if s.full {
		count = size
	}
	out := make([]*audit.Activity, 0, limit)
	for i := 1; i <= count && len(out) < limit; i++ {
		idx := (s.next - i + size) % size
		a := s.ring[idx]
		if a != nil && a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out
}

// List pages through the persisted audit trail.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, filter audit.ActivityFilter) (shared.Paginated[*audit.Activity], error) {
	filter.Normalize()
	return s.repo.List(ctx, companyID, filter)
}
