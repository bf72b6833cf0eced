package service

import (
	"github.com/dom/crusadetome/internal/config"
	"github.com/dom/crusadetome/internal/repository"
)

type Services struct {
	Unit    *UnitService
	Session *SessionService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	policy := RetainInactive
	if cfg.ClearInactiveSections {
		policy = ClearInactive
	}

	units := NewUnitService(policy)
	return &Services{
		Unit:    units,
		Session: NewSessionService(repos.Session, units, cfg),
	}
}
