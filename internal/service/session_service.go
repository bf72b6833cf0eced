package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/crusadetome/internal/config"
	"github.com/dom/crusadetome/internal/domain"
	"github.com/dom/crusadetome/internal/logger"
	"github.com/dom/crusadetome/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
)

// Publisher is told about every record change of a session.
type Publisher interface {
	Publish(sessionID uuid.UUID, record domain.UnitRecord)
}

// SessionService binds the unit lifecycle to stored editing sessions.
type SessionService struct {
	sessionRepo repository.SessionRepository
	units       *UnitService
	cfg         *config.Config
	publisher   Publisher
	log         *zap.Logger
}

func NewSessionService(sessionRepo repository.SessionRepository, units *UnitService, cfg *config.Config) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		units:       units,
		cfg:         cfg,
		log:         logger.Named("session"),
	}
}

// SetPublisher registers the receiver of record changes.
func (s *SessionService) SetPublisher(p Publisher) {
	s.publisher = p
}

type StartResult struct {
	Session *domain.Session
	Token   string
}

// Start opens a session holding an empty record.
func (s *SessionService) Start(ctx context.Context) (*StartResult, error) {
	session := &domain.Session{
		ID:     uuid.New(),
		Record: s.units.New(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(session.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("session started", zap.String("session_id", session.ID.String()))
	return &StartResult{Session: session, Token: token}, nil
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

// Reset replaces the session record with an empty one.
func (s *SessionService) Reset(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, err := s.sessionRepo.Update(ctx, id, func(domain.UnitRecord) (domain.UnitRecord, error) {
		return s.units.New(), nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(session)
	return session, nil
}

// Load replaces the session record with a parsed document. A document that
// is not JSON leaves the stored record as it was.
func (s *SessionService) Load(ctx context.Context, id uuid.UUID, data []byte) (*domain.Session, Report, error) {
	var report Report
	session, err := s.sessionRepo.Update(ctx, id, func(current domain.UnitRecord) (domain.UnitRecord, error) {
		next, r, err := s.units.Load(current, data)
		report = r
		return next, err
	})
	if err != nil {
		return nil, Report{}, err
	}

	for _, w := range report.Warnings {
		s.log.Warn("loaded document", zap.String("session_id", id.String()), zap.String("warning", w))
	}
	s.publish(session)
	return session, report, nil
}

// Submit applies a form to the session record.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID, form Form) (*domain.Session, Report, error) {
	var report Report
	session, err := s.sessionRepo.Update(ctx, id, func(current domain.UnitRecord) (domain.UnitRecord, error) {
		next, r := s.units.Submit(current, form)
		report = r
		return next, nil
	})
	if err != nil {
		return nil, Report{}, err
	}
	s.publish(session)
	return session, report, nil
}

func (s *SessionService) Save(ctx context.Context, id uuid.UUID) (*SavedFile, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.units.Save(session.Record)
}

func (s *SessionService) End(ctx context.Context, id uuid.UUID) error {
	return s.sessionRepo.Delete(ctx, id)
}

func (s *SessionService) IssueToken(id uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL())),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken returns the session ID a token was issued for.
func (s *SessionService) ValidateToken(tokenString string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}
	return id, nil
}

func (s *SessionService) publish(session *domain.Session) {
	if s.publisher != nil {
		s.publisher.Publish(session.ID, session.Record)
	}
}
