package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/somnihealth/intake-backend/internal/entity"
)

var _ SessionRepository = &CachedSessionRepository{}

// CachedSessionRepository keeps active sessions in a TTL cache in front of
// Postgres. Every write path goes to the database first and refreshes the
// cache from the returned row, so the cache never holds state the database
// does not.
type CachedSessionRepository struct {
	inner SessionRepository
	cache *gocache.Cache
}

func NewCachedSessionRepository(inner SessionRepository, ttl, cleanup time.Duration) *CachedSessionRepository {
	return &CachedSessionRepository{
		inner: inner,
		cache: gocache.New(ttl, cleanup),
	}
}

func (r *CachedSessionRepository) CreateSession(ctx context.Context, session entity.IntakeSession) (*entity.IntakeSession, error) {
	created, err := r.inner.CreateSession(ctx, session)
	if err != nil {
		return nil, err
	}

	r.put(created)
	return created, nil
}

func (r *CachedSessionRepository) GetSessionByID(ctx context.Context, id string) (*entity.IntakeSession, error) {
	if cached, ok := r.cache.Get(id); ok {
		if session, ok := cached.(*entity.IntakeSession); ok {
			copied := *session
			return &copied, nil
		}
	}

	session, err := r.inner.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.put(session)
	return session, nil
}

func (r *CachedSessionRepository) UpdateSessionRecord(
	ctx context.Context, id string, record entity.PatientRecord, status entity.SessionStatus,
) (*entity.IntakeSession, error) {
	updated, err := r.inner.UpdateSessionRecord(ctx, id, record, status)
	if err != nil {
		return nil, err
	}

	r.put(updated)
	return updated, nil
}

func (r *CachedSessionRepository) UpdateSessionStatus(
	ctx context.Context, id string, status entity.SessionStatus,
) (*entity.IntakeSession, error) {
	updated, err := r.inner.UpdateSessionStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if status.IsTerminal() {
		r.cache.Delete(id)
	} else {
		r.put(updated)
	}
	return updated, nil
}

func (r *CachedSessionRepository) UpdateSessionResult(
	ctx context.Context, id string, status entity.SessionStatus, label, report *string,
) (*entity.IntakeSession, error) {
	updated, err := r.inner.UpdateSessionResult(ctx, id, status, label, report)
	if err != nil {
		return nil, err
	}

	if status.IsTerminal() {
		r.cache.Delete(id)
	} else {
		r.put(updated)
	}
	return updated, nil
}

func (r *CachedSessionRepository) put(session *entity.IntakeSession) {
	copied := *session
	r.cache.SetDefault(session.ID, &copied)
}
