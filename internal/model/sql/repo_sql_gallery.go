package sql

import (
	"artify/internal/entity"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// CreateGalleryItem inserts a new gallery item.
func (r *GormRepository) CreateGalleryItem(ctx context.Context, item *entity.DbGalleryItem) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if item == nil {
		return fmt.Errorf("gallery item is nil")
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// ListGalleryItems retrieves paginated gallery items for one user.
func (r *GormRepository) ListGalleryItems(ctx context.Context, params *entity.GalleryQuery) ([]entity.DbGalleryItem, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbGalleryItem{})
	if params != nil {
		if params.UserID > 0 {
			query = query.Where("user_id = ?", params.UserID)
		}
		if trimmed := strings.TrimSpace(params.StyleID); trimmed != "" {
			query = query.Where("style_id = ?", trimmed)
		}
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, nil, err
	}

	page := 1
	pageSize := 20
	if params != nil {
		if params.Page > 0 {
			page = int(params.Page)
		}
		if params.PageSize > 0 {
			pageSize = int(params.PageSize)
		}
	}

	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	var items []entity.DbGalleryItem
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(totalCount, page, pageSize)
	return items, meta, nil
}

// GetGalleryItem retrieves one gallery item scoped to its owner.
func (r *GormRepository) GetGalleryItem(ctx context.Context, userID uint, projectID string) (*entity.DbGalleryItem, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(projectID)
	if userID == 0 || trimmed == "" {
		return nil, fmt.Errorf("invalid gallery item reference")
	}

	var item entity.DbGalleryItem
	if err := r.db.WithContext(ctx).Where("user_id = ? AND project_id = ?", userID, trimmed).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteGalleryItem removes one gallery item scoped to its owner.
func (r *GormRepository) DeleteGalleryItem(ctx context.Context, userID uint, projectID string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(projectID)
	if userID == 0 || trimmed == "" {
		return fmt.Errorf("invalid gallery item reference")
	}

	result := r.db.WithContext(ctx).Where("user_id = ? AND project_id = ?", userID, trimmed).Delete(&entity.DbGalleryItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
