package service

import "sync"

// InFlightRegistry 记录当前正在生成的主体集合，保证同一主体同时
// 至多一个生成请求在途。键为 Identity.Subject()。
type InFlightRegistry struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{
		inFlight: make(map[string]struct{}),
	}
}

// Acquire 尝试占用闸门。已有在途请求时返回 false。
func (r *InFlightRegistry) Acquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.inFlight[key]; exists {
		return false
	}
	r.inFlight[key] = struct{}{}
	return true
}

// Release 释放闸门。对未占用的键调用是无害的空操作。
func (r *InFlightRegistry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, key)
}

// Size 返回当前在途请求数，仅用于观测。
func (r *InFlightRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inFlight)
}
