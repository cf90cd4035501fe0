package entity

import "time"

// DbGalleryItem 认证用户画廊中的一件作品，按项目标识唯一。
type DbGalleryItem struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserID        uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	ProjectID     string    `gorm:"column:project_id;type:varchar(64);uniqueIndex;not null" json:"project_id"`
	StyleID       string    `gorm:"column:style_id;type:varchar(64);index;not null" json:"style_id"`
	Category      string    `gorm:"column:category;type:varchar(32);index" json:"category"`
	ArtworkPath   string    `gorm:"column:artwork_path;type:varchar(512)" json:"artwork_path"`
	ThumbnailPath string    `gorm:"column:thumbnail_path;type:varchar(512)" json:"thumbnail_path"`
	Watermarked   bool      `gorm:"column:watermarked;not null;default:false" json:"watermarked"`
	Options       JSONMap   `gorm:"column:options;type:text" json:"options,omitempty"`
}

// TableName overrides default pluralised name.
func (DbGalleryItem) TableName() string {
	return "gallery_items"
}

// GalleryQuery supports listing gallery items with pagination.
type GalleryQuery struct {
	BaseParams
	UserID  uint   `json:"-"`
	StyleID string `json:"style_id" form:"style_id" query:"style_id"`
}

// GalleryListResponse 画廊列表响应
type GalleryListResponse struct {
	Items []DbGalleryItem `json:"items"`
	Meta  *Meta           `json:"meta"`
}
