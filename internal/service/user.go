package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

const (
	msgSelfSubscribe     = "You cannot subscribe to yourself."
	msgAlreadySubscribed = "You are already subscribed to this user."
	msgNotSubscribed     = "You are not subscribed to this user."
)

// UserService serves user profiles and follow edges.
type UserService struct {
	db     *gorm.DB
	images storage.ImageStore
}

func NewUserService(db *gorm.DB, images storage.ImageStore) *UserService {
	return &UserService{db: db, images: images}
}

// List returns users ordered by id with is_subscribed relative to viewer.
func (s *UserService) List(ctx context.Context, viewer *models.User, page PageRequest) ([]types.UserResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := db.Order("id").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followed, err := followedSet(db, viewer, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]types.UserResponse, len(users))
	for i := range users {
		_, sub := followed[users[i].ID]
		out[i] = types.NewUserResponse(&users[i], sub)
	}
	return out, total, nil
}

func (s *UserService) Get(ctx context.Context, viewer *models.User, id uint) (*types.UserResponse, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}

	followed, err := followedSet(db, viewer, []uint{user.ID})
	if err != nil {
		return nil, err
	}
	_, sub := followed[user.ID]
	resp := types.NewUserResponse(&user, sub)
	return &resp, nil
}

// Subscribe makes viewer follow the user with targetID.
func (s *UserService) Subscribe(ctx context.Context, viewer *models.User, targetID uint, recipesLimit int) (*types.SubscriptionResponse, error) {
	db := s.db.WithContext(ctx)

	var target models.User
	if err := db.First(&target, targetID).Error; err != nil {
		return nil, notFound(err)
	}
	if target.ID == viewer.ID {
		return nil, newValidationError(msgSelfSubscribe)
	}

	var count int64
	if err := db.Model(&models.Follow{}).
		Where("user_id = ? AND following_id = ?", viewer.ID, target.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, newValidationError(msgAlreadySubscribed)
	}

	if err := db.Create(&models.Follow{UserID: viewer.ID, FollowingID: target.ID}).Error; err != nil {
		if isDuplicate(err) {
			return nil, newValidationError(msgAlreadySubscribed)
		}
		return nil, err
	}

	items, err := s.subscriptionItems(db, []models.User{target}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *UserService) Unsubscribe(ctx context.Context, viewer *models.User, targetID uint) error {
	db := s.db.WithContext(ctx)

	var target models.User
	if err := db.First(&target, targetID).Error; err != nil {
		return notFound(err)
	}

	res := db.Where("user_id = ? AND following_id = ?", viewer.ID, target.ID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newValidationError(msgNotSubscribed)
	}
	return nil
}

// Subscriptions lists the users viewer follows, each with up to recipesLimit
// of their newest recipes (all of them when recipesLimit <= 0).
func (s *UserService) Subscriptions(ctx context.Context, viewer *models.User, page PageRequest, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	db := s.db.WithContext(ctx)

	followed := db.Model(&models.Follow{}).Select("following_id").Where("user_id = ?", viewer.ID)

	var total int64
	if err := db.Model(&models.User{}).Where("id IN (?)", followed).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := db.Where("id IN (?)", followed).
		Order("id").Offset(page.Offset()).Limit(page.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	items, err := s.subscriptionItems(db, users, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// subscriptionItems composes the user projection with recipes and a count.
// Every user passed here is followed by the viewer.
func (s *UserService) subscriptionItems(db *gorm.DB, users []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	out := make([]types.SubscriptionResponse, len(users))
	for i := range users {
		var count int64
		if err := db.Model(&models.Recipe{}).Where("author_id = ?", users[i].ID).Count(&count).Error; err != nil {
			return nil, err
		}

		q := db.Where("author_id = ?", users[i].ID).Order("pub_date DESC, id DESC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, err
		}

		mini := make([]types.RecipeMini, len(recipes))
		for j := range recipes {
			mini[j] = toMini(&recipes[j], s.images)
		}

		out[i] = types.SubscriptionResponse{
			UserResponse: types.NewUserResponse(&users[i], true),
			Recipes:      mini,
			RecipesCount: count,
		}
	}
	return out, nil
}

// followedSet returns which of ids the viewer follows. Anonymous viewers
// follow nobody.
func followedSet(db *gorm.DB, viewer *models.User, ids []uint) (map[uint]struct{}, error) {
	set := map[uint]struct{}{}
	if viewer == nil || len(ids) == 0 {
		return set, nil
	}

	var followed []uint
	if err := db.Model(&models.Follow{}).
		Where("user_id = ? AND following_id IN ?", viewer.ID, ids).
		Pluck("following_id", &followed).Error; err != nil {
		return nil, err
	}
	for _, id := range followed {
		set[id] = struct{}{}
	}
	return set, nil
}

// imageURLs resolves a storage key to its public URL.
type imageURLs interface {
	URL(key string) string
}

func toMini(r *models.Recipe, images imageURLs) types.RecipeMini {
	return types.RecipeMini{
		ID:          r.ID,
		Name:        r.Name,
		Image:       images.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}
