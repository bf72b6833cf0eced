package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dom/crusadetome/internal/domain"
	"github.com/dom/crusadetome/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newSession() *domain.Session {
	return &domain.Session{ID: uuid.New(), Record: domain.NewUnitRecord()}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	repo := memory.NewSessionRepository(time.Hour)
	ctx := context.Background()

	session := newSession()
	session.Record.UnitName = "Hive Tyrant"
	require.NoError(t, repo.Create(ctx, session))
	assert.False(t, session.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hive Tyrant", got.Record.UnitName)

	// Mutating a returned copy does not reach the store.
	got.Record.UnitName = "Changed"
	again, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hive Tyrant", again.Record.UnitName)

	assert.Error(t, repo.Create(ctx, session), "duplicate id")

	_, err = repo.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestSessionRepository_Update(t *testing.T) {
	repo := memory.NewSessionRepository(time.Hour)
	ctx := context.Background()

	session := newSession()
	require.NoError(t, repo.Create(ctx, session))

	updated, err := repo.Update(ctx, session.ID, func(current domain.UnitRecord) (domain.UnitRecord, error) {
		current.UnitName = "Zoanthropes"
		current.Keywords = append(current.Keywords, "Psyker")
		return current, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Zoanthropes", updated.Record.UnitName)

	failure := errors.New("parse failed")
	_, err = repo.Update(ctx, session.ID, func(current domain.UnitRecord) (domain.UnitRecord, error) {
		current.UnitName = "half-applied"
		return current, failure
	})
	assert.True(t, errors.Is(err, failure))

	got, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zoanthropes", got.Record.UnitName)
	assert.Equal(t, []string{"Psyker"}, got.Record.Keywords)

	_, err = repo.Update(ctx, uuid.New(), func(current domain.UnitRecord) (domain.UnitRecord, error) {
		return current, nil
	})
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
}

func TestSessionRepository_Expiry(t *testing.T) {
	c := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	repo := memory.NewSessionRepository(time.Hour).WithClock(c.Now)
	ctx := context.Background()

	stale := newSession()
	require.NoError(t, repo.Create(ctx, stale))

	c.now = c.now.Add(30 * time.Minute)
	_, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)

	c.now = c.now.Add(2 * time.Hour)
	_, err = repo.GetByID(ctx, stale.ID)
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
	assert.Equal(t, 0, repo.Len())

	// Creating a session sweeps other expired ones.
	old := newSession()
	require.NoError(t, repo.Create(ctx, old))
	c.now = c.now.Add(2 * time.Hour)
	require.NoError(t, repo.Create(ctx, newSession()))
	assert.Equal(t, 1, repo.Len())
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := memory.NewSessionRepository(0)
	ctx := context.Background()

	session := newSession()
	require.NoError(t, repo.Create(ctx, session))
	require.NoError(t, repo.Delete(ctx, session.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, session.ID), domain.ErrSessionNotFound))
}
