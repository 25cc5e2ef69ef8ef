package repository

import (
	"earnly/internal/models"

	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) GetByID(id uint) (*models.Video, error) {
	var v models.Video
	err := r.db.First(&v, id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListActive returns active videos, optionally filtered by category.
func (r *VideoRepository) ListActive(category string, limit, offset int) ([]models.Video, int64, error) {
	q := r.db.Model(&models.Video{}).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var videos []models.Video
	err := q.Order("is_featured DESC, created_at DESC").Limit(limit).Offset(offset).Find(&videos).Error
	return videos, total, err
}

func (r *VideoRepository) Create(v *models.Video) error {
	return r.db.Create(v).Error
}

func (r *VideoRepository) Update(v *models.Video) error {
	return r.db.Save(v).Error
}

// IncrementViews bumps the view counter without a read-modify-write.
func (r *VideoRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Video{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}
