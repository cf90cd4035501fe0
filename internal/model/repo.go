package model

import (
	"artify/internal/entity"
	"context"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	CountUsers(ctx context.Context) (int64, error)

	// 额度账本。余额不存在时 GetCreditBalance 返回 (nil, nil)。
	GetCreditBalance(ctx context.Context, subject string) (*entity.DbCreditBalance, error)
	InitCreditBalance(ctx context.Context, subject string, freeGrant int64) (*entity.DbCreditBalance, error)
	ConsumeCredit(ctx context.Context, subject, referenceID string) (*entity.DbCreditBalance, error)

	// 画廊
	CreateGalleryItem(ctx context.Context, item *entity.DbGalleryItem) error
	ListGalleryItems(ctx context.Context, params *entity.GalleryQuery) ([]entity.DbGalleryItem, *entity.Meta, error)
	GetGalleryItem(ctx context.Context, userID uint, projectID string) (*entity.DbGalleryItem, error)
	DeleteGalleryItem(ctx context.Context, userID uint, projectID string) error
}
