package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/peernote/relations/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ProfileRepository provides profile-related database operations
type ProfileRepository struct {
	*Repository
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(repo *Repository) *ProfileRepository {
	return &ProfileRepository{Repository: repo}
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByIDs retrieves multiple profiles by id set
func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetByUsername retrieves a profile by username
func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// SearchByName returns profiles whose username or display name contains
// the query text, case-insensitively, excluding excludeID
func (r *ProfileRepository) SearchByName(ctx context.Context, query string, excludeID int64, limit int) ([]*models.Profile, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var profiles []*models.Profile
	err := r.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern).
		Order("username ASC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// NotificationRepository provides notification-related database operations
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// Create appends a notification row
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}
