package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/shared"
)

type fakeActivityRepo struct {
	lines []*audit.Activity
}

func (r *fakeActivityRepo) Append(_ context.Context, activity *audit.Activity) error {
	r.lines = append(r.lines, activity)
	return nil
}

func (r *fakeActivityRepo) List(_ context.Context, companyID uuid.UUID, filter audit.ActivityFilter) (shared.Paginated[*audit.Activity], error) {
	var out []*audit.Activity
	for _, a := range r.lines {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return shared.Paginated[*audit.Activity]{Items: out, Total: int64(len(out))}, nil
}

func (r *fakeActivityRepo) Latest(_ context.Context, limit int) ([]*audit.Activity, error) {
	out := make([]*audit.Activity, 0, limit)
	for i := len(r.lines) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.lines[i])
	}
	return out, nil
}

func TestServiceWarmLoadsHistory(t *testing.T) {
	companyID, userID := uuid.New(), uuid.New()
	repo := &fakeActivityRepo{lines: []*audit.Activity{
		audit.NewActivity(companyID, userID, "sale.create", "sale", uuid.New(), ""),
		audit.NewActivity(companyID, userID, "sale.cancel", "sale", uuid.New(), ""),
	}}
	service := NewService(repo, 8, zap.NewNop())
	require.NoError(t, service.Warm(context.Background()))

	recent := service.Recent(companyID, 10)
	require.Len(t, recent, 2)
	assert.Equal(t, "sale.cancel", recent[0].Action, "newest first")
	assert.Equal(t, "sale.create", recent[1].Action)
}

func TestServiceRecordVisibleAfterWarm(t *testing.T) {
	companyID, userID := uuid.New(), uuid.New()
	repo := &fakeActivityRepo{lines: []*audit.Activity{
		audit.NewActivity(companyID, userID, "order.create", "order", uuid.New(), ""),
	}}
	service := NewService(repo, 8, zap.NewNop())
	require.NoError(t, service.Warm(context.Background()))

	service.Record(audit.NewActivity(companyID, userID, "order.status", "order", uuid.New(), "CONFIRMED"))

	recent := service.Recent(companyID, 10)
	require.Len(t, recent, 2, "lines recorded after warmup show up alongside history")
	assert.Equal(t, "order.status", recent[0].Action)
}

func TestServiceRecentFiltersByCompany(t *testing.T) {
	companyID, other := uuid.New(), uuid.New()
	service := NewService(&fakeActivityRepo{}, 8, zap.NewNop())
	service.Record(audit.NewActivity(companyID, uuid.New(), "product.create", "product", uuid.New(), ""))
	service.Record(audit.NewActivity(other, uuid.New(), "product.create", "product", uuid.New(), ""))

	recent := service.Recent(companyID, 10)
	require.Len(t, recent, 1)
	assert.Equal(t, companyID, recent[0].CompanyID)
	assert.Empty(t, service.Recent(uuid.New(), 10))
}

func TestServiceRingWrapsAtCapacity(t *testing.T) {
	companyID := uuid.New()
	service := NewService(&fakeActivityRepo{}, 3, zap.NewNop())
	for _, action := range []string{"a", "b", "c", "d"} {
		service.Record(audit.NewActivity(companyID, uuid.New(), action, "product", uuid.New(), ""))
	}

	recent := service.Recent(companyID, 10)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].Action)
	assert.Equal(t, "b", recent[2].Action, "oldest line is evicted")
}
