package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store is the persistence contract for identity sync.
type Store interface {
	GetUserByAuthID(ctx context.Context, authID string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	TouchLogin(ctx context.Context, uid string) (*User, error)
	GetProfileByUID(ctx context.Context, uid string) (*Profile, error)
	EnsureProfile(ctx context.Context, uid string) (*Profile, error)
}

// Service synchronizes external identities with portal accounts.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates the identity service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// SyncResult is the outcome of an identity sync.
type SyncResult struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
	IsNew   bool     `json:"is_new,omitempty"`
}

// Sync upserts the portal account for an authenticated identity. First login
// creates the user and patient profile; returning logins refresh last_login.
func (s *Service) Sync(ctx context.Context, identity Identity) (*SyncResult, error) {
	existing, err := s.store.GetUserByAuthID(ctx, identity.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if existing != nil {
		user, err := s.store.TouchLogin(ctx, existing.UID)
		if err != nil {
			return nil, fmt.Errorf("refresh login: %w", err)
		}
		profile, err := s.store.EnsureProfile(ctx, user.UID)
		if err != nil {
			return nil, err
		}
		return &SyncResult{User: user, Profile: profile}, nil
	}

	user := &User{
		AuthID:     identity.ID,
		Email:      identity.Email,
		Name:       identity.DisplayName(),
		Role:       "patient",
		IsVerified: true,
		LastLogin:  time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	profile, err := s.store.EnsureProfile(ctx, user.UID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("new patient account provisioned",
		zap.String("uid", user.UID),
		zap.String("pid", profile.PID))
	return &SyncResult{User: user, Profile: profile, IsNew: true}, nil
}

// ResolvePID maps an external auth id to the patient profile id. Used by
// handlers that accept the session identity rather than an explicit pid.
func (s *Service) ResolvePID(ctx context.Context, authID string) (string, error) {
	user, err := s.store.GetUserByAuthID(ctx, authID)
	if err != nil {
		return "", err
	}
	profile, err := s.store.GetProfileByUID(ctx, user.UID)
	if err != nil {
		return "", err
	}
	return profile.PID, nil
}
