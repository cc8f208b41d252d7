package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/repos"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

type UserService interface {
	IsAdmin(ctx context.Context, phone string) bool
	CreateUser(ctx context.Context, phone string, isAdmin bool) (*types.User, error)
	UserExists(ctx context.Context, phone string) (bool, error)
	GetUserByPhone(ctx context.Context, phone string) (*types.User, error)
	DeleteUser(ctx context.Context, phone string) error
}

type userService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	profileRepo    repos.ProfileRepo
	preferenceRepo repos.PreferenceRepo
	stateRepo      repos.ConversationStateRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, profileRepo repos.ProfileRepo, preferenceRepo repos.PreferenceRepo, stateRepo repos.ConversationStateRepo) UserService {
	return &userService{
		db:             db,
		log:            baseLog.With("service", "UserService"),
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		preferenceRepo: preferenceRepo,
		stateRepo:      stateRepo,
	}
}

// IsAdmin degrades to false on storage errors: an unverifiable caller gets
// the unprivileged menu, never the admin one.
func (s *userService) IsAdmin(ctx context.Context, phone string) bool {
	user, err := s.userRepo.GetByPhone(ctx, nil, phone)
	if err != nil {
		s.log.Error("Failed to check admin status", "phone", phone, "error", err)
		return false
	}
	return user != nil && user.IsAdmin
}

func (s *userService) CreateUser(ctx context.Context, phone string, isAdmin bool) (*types.User, error) {
	user := &types.User{Phone: phone, IsAdmin: isAdmin}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return s.userRepo.Create(ctx, nil, user)
}

func (s *userService) UserExists(ctx context.Context, phone string) (bool, error) {
	return s.userRepo.PhoneExists(ctx, nil, phone)
}

func (s *userService) GetUserByPhone(ctx context.Context, phone string) (*types.User, error) {
	return s.userRepo.GetByPhone(ctx, nil, phone)
}

// DeleteUser removes the account and everything hanging off it. The explicit
// child deletes keep behavior identical when the store has no cascading FKs.
func (s *userService) DeleteUser(ctx context.Context, phone string) error {
	user, err := s.userRepo.GetByPhone(ctx, nil, phone)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.preferenceRepo.DeleteByUserID(ctx, tx, user.ID); err != nil {
			return err
		}
		if err := s.profileRepo.DeleteByUserID(ctx, tx, user.ID); err != nil {
			return err
		}
		if err := s.stateRepo.DeleteByPhone(ctx, tx, phone); err != nil {
			return err
		}
		return s.userRepo.DeleteByPhone(ctx, tx, phone)
	})
}
