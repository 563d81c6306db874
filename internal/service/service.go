package service

import (
	"github.com/sirupsen/logrus"

	"locallisting/internal/config"
	"locallisting/internal/repository"
	"locallisting/internal/storage"
)

type Service struct {
	User      UserService
	Auth      AuthService
	Profile   ProfileService
	Category  CategoryService
	Listing   ListingService
	Messaging MessagingService
	Review    ReviewService
	Tables    TablesService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, log *logrus.Logger) *Service {
	return &Service{
		User:      NewUserService(rep.User),
		Auth:      NewAuthService(rep.User, cfg, log),
		Profile:   NewProfileService(rep.Profile, rep.Listing, rep.Image),
		Category:  NewCategoryService(rep.Category),
		Listing:   NewListingService(rep, storage, log),
		Messaging: NewMessagingService(rep, log),
		Review:    NewReviewService(rep),
		Tables:    NewTablesService(rep.Tables),
	}
}
