package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

// cloner 有內部 slice 的實體 (Account) 需要深拷貝
type cloner[T any] interface {
	Clone() T
}

// Store 是一個使用 RWMutex 保護的泛型 repository
//
// 結構:
//
//	items: ID -> 實體
//	order: 第一次儲存的順序，All() 依此順序回傳
//	mu: 保護 items 與 order
type Store[T domain.Entity] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewStore 建立一個空的 Store
func NewStore[T domain.Entity]() *Store[T] {
	return &Store[T]{
		items: make(map[string]T),
	}
}

// GetByID 依 ID 取得實體
func (s *Store[T]) GetByID(ctx context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	return clone(item), true, nil
}

// All 回傳所有實體的快照
func (s *Store[T]) All(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.items[id]))
	}
	return out, nil
}

// Save insert-or-replace
func (s *Store[T]) Save(ctx context.Context, entity T) (T, error) {
	id := entity.EntityID()
	stored := clone(entity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = stored
	return clone(stored), nil
}

// Len 實體數量
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func clone[T any](v T) T {
	if c, ok := any(v).(cloner[T]); ok {
		return c.Clone()
	}
	return v
}

var (
	_ usecase.UsersRepository    = (*Store[domain.User])(nil)
	_ usecase.AccountsRepository = (*Store[domain.Account])(nil)
)
