package gen

import (
	"context"
	"time"
)

// RetryPolicy 临时失败的重试预算。MaxAttempts 为总尝试次数（含首次），
// 第 n 次失败后的等待时间为 BaseDelay * 2^(n-1)。
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep 可在测试中注入以跳过真实等待。
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy 返回 3 次尝试、2s/4s 退避的默认策略。
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Sleep:       sleepContext,
	}
}

// Delay 返回第 attempt 次（从 1 起）失败后的退避时长。
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay << (attempt - 1)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
