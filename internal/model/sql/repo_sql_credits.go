package sql

import (
	"artify/internal/entity"
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrInsufficientCredits 在余额不足时由 ConsumeCredit 返回。
var ErrInsufficientCredits = errors.New("insufficient credits")

// GetCreditBalance loads the balance row for a subject. A missing row is not
// an error: callers get (nil, nil) and decide whether to initialise.
func (r *GormRepository) GetCreditBalance(ctx context.Context, subject string) (*entity.DbCreditBalance, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return nil, fmt.Errorf("subject is empty")
	}

	var balance entity.DbCreditBalance
	if err := r.db.WithContext(ctx).Where("subject = ?", trimmed).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// InitCreditBalance creates the first-use balance row with the free grant.
// If another request created the row concurrently the existing row wins.
func (r *GormRepository) InitCreditBalance(ctx context.Context, subject string, freeGrant int64) (*entity.DbCreditBalance, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return nil, fmt.Errorf("subject is empty")
	}
	if freeGrant < 0 {
		freeGrant = 0
	}

	balance := entity.DbCreditBalance{
		Subject:       trimmed,
		FreeRemaining: freeGrant,
	}
	if err := r.db.WithContext(ctx).Create(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetCreditBalance(ctx, trimmed)
		}
		return nil, err
	}
	return &balance, nil
}

// ConsumeCredit 在单个事务内扣减一次生成额度并写入账本流水。
// 免费额度先于付费额度消耗，referenceID 为本次生成的项目标识。
func (r *GormRepository) ConsumeCredit(ctx context.Context, subject, referenceID string) (*entity.DbCreditBalance, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return nil, fmt.Errorf("subject is empty")
	}

	var updated entity.DbCreditBalance
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var balance entity.DbCreditBalance
		if err := tx.Where("subject = ?", trimmed).First(&balance).Error; err != nil {
			return err
		}

		var freeDelta, paidDelta int64
		switch {
		case balance.FreeRemaining > 0:
			freeDelta = -1
		case balance.PaidRemaining > 0:
			paidDelta = -1
		default:
			return ErrInsufficientCredits
		}

		balance.FreeRemaining += freeDelta
		balance.PaidRemaining += paidDelta
		balance.TotalUsed++

		if err := tx.Model(&entity.DbCreditBalance{}).Where("id = ?", balance.ID).Updates(map[string]interface{}{
			"free_remaining": balance.FreeRemaining,
			"paid_remaining": balance.PaidRemaining,
			"total_used":     balance.TotalUsed,
		}).Error; err != nil {
			return err
		}

		record := entity.DbCreditTransaction{
			Subject:     trimmed,
			FreeDelta:   freeDelta,
			PaidDelta:   paidDelta,
			FreeAfter:   balance.FreeRemaining,
			PaidAfter:   balance.PaidRemaining,
			ReferenceID: strings.TrimSpace(referenceID),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		updated = balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
