package repository

import (
	"earnly/internal/models"

	"gorm.io/gorm"
)

type AdRepository struct {
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) *AdRepository {
	return &AdRepository{db: db}
}

func (r *AdRepository) GetByID(id string) (*models.Ad, error) {
	var a models.Ad
	err := r.db.First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdRepository) ListActive() ([]models.Ad, error) {
	var ads []models.Ad
	err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&ads).Error
	return ads, err
}

func (r *AdRepository) Create(a *models.Ad) error {
	return r.db.Create(a).Error
}

func (r *AdRepository) Update(a *models.Ad) error {
	return r.db.Save(a).Error
}
