package entity

import "time"

// DbCreditBalance 记录某个主体（认证用户或匿名访客）的剩余生成额度。
// 余额仅通过账本的初始化与扣减操作变更。
type DbCreditBalance struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Subject       string    `gorm:"column:subject;type:varchar(128);uniqueIndex;not null" json:"subject"`
	FreeRemaining int64     `gorm:"column:free_remaining;not null;default:0" json:"free_remaining"`
	PaidRemaining int64     `gorm:"column:paid_remaining;not null;default:0" json:"paid_remaining"`
	TotalUsed     int64     `gorm:"column:total_used;not null;default:0" json:"total_used"`
}

// TableName overrides default pluralised name.
func (DbCreditBalance) TableName() string {
	return "credit_balances"
}

// CreditsRemaining 对外上报的剩余额度 = 免费 + 付费。
func (b *DbCreditBalance) CreditsRemaining() int64 {
	if b == nil {
		return 0
	}
	return b.FreeRemaining + b.PaidRemaining
}

// CanGenerate 准入判定：免费或付费额度任一大于零即可生成。
func (b *DbCreditBalance) CanGenerate() bool {
	if b == nil {
		return false
	}
	return b.FreeRemaining > 0 || b.PaidRemaining > 0
}

// DbCreditTransaction 是一条不可变的账本流水，记录有符号的免费/付费增减、
// 变更后的余额以及作为审计引用的项目标识。
type DbCreditTransaction struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Subject     string    `gorm:"column:subject;type:varchar(128);index;not null" json:"subject"`
	FreeDelta   int64     `gorm:"column:free_delta;not null;default:0" json:"free_delta"`
	PaidDelta   int64     `gorm:"column:paid_delta;not null;default:0" json:"paid_delta"`
	FreeAfter   int64     `gorm:"column:free_after;not null;default:0" json:"free_after"`
	PaidAfter   int64     `gorm:"column:paid_after;not null;default:0" json:"paid_after"`
	ReferenceID string    `gorm:"column:reference_id;type:varchar(64);index" json:"reference_id"`
}

// TableName overrides default pluralised name.
func (DbCreditTransaction) TableName() string {
	return "credit_transactions"
}

// CreditBalanceResponse 额度查询响应
type CreditBalanceResponse struct {
	Subject          string `json:"subject"`
	FreeRemaining    int64  `json:"free_remaining"`
	PaidRemaining    int64  `json:"paid_remaining"`
	TotalUsed        int64  `json:"total_used"`
	CreditsRemaining int64  `json:"credits_remaining"`
}
