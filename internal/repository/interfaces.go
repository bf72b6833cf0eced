package repository

import (
	"context"

	"github.com/dom/crusadetome/internal/domain"
	"github.com/google/uuid"
)

// UpdateFunc derives the next record from the stored one. Returning an error
// leaves the stored record untouched.
type UpdateFunc func(current domain.UnitRecord) (domain.UnitRecord, error)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Update(ctx context.Context, id uuid.UUID, fn UpdateFunc) (*domain.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	Session SessionRepository
}
