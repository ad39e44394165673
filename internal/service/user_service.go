package service

import (
	"context"

	"storebot/internal/config"
	"storebot/internal/domain"
	"storebot/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo         domain.UserRepository
	logger       *zerolog.Logger
	adminsMap    map[int64]bool
	blacklistMap map[int64]bool
}

func NewUserService(repo domain.UserRepository, cfg *config.Config, logger *zerolog.Logger) *UserService {
	adminsMap := make(map[int64]bool)
	for _, id := range cfg.Admins {
		adminsMap[id] = true
	}

	blacklistMap := make(map[int64]bool)
	for _, id := range cfg.Blacklist {
		blacklistMap[id] = true
	}

	return &UserService{
		repo:         repo,
		logger:       logger,
		adminsMap:    adminsMap,
		blacklistMap: blacklistMap,
	}
}

func (s *UserService) IsAdmin(userID int64) bool {
	return s.adminsMap[userID]
}

func (s *UserService) IsBlacklisted(userID int64) bool {
	return s.blacklistMap[userID]
}

// SaveUser upserts the Telegram profile; admin and blacklist flags always
// come from the config.
func (s *UserService) SaveUser(ctx context.Context, user *models.User) error {
	user.IsAdmin = s.IsAdmin(user.TelegramID)
	user.IsBlacklisted = s.IsBlacklisted(user.TelegramID)
	return s.repo.CreateOrUpdateUser(ctx, user)
}

func (s *UserService) UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error {
	if phone == "" {
		return nil
	}
	return s.repo.UpdateUserPhone(ctx, telegramID, phone)
}

func (s *UserService) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	return s.repo.UpdateUserActivity(ctx, telegramID)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *UserService) GetActiveUsers(ctx context.Context, days int) ([]*models.User, error) {
	return s.repo.GetActiveUsers(ctx, days)
}
