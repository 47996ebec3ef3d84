package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

// TransactionStore 交易 repository，額外維護帳戶索引
//
// 交易不可變更，同 ID 重複 Save 會取代原值 (索引位置不變)
type TransactionStore struct {
	mu        sync.RWMutex
	store     *Store[domain.Transaction]
	byAccount map[string][]string
}

// NewTransactionStore 建立空的 TransactionStore
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		store:     NewStore[domain.Transaction](),
		byAccount: make(map[string][]string),
	}
}

func (s *TransactionStore) GetByID(ctx context.Context, id string) (domain.Transaction, bool, error) {
	return s.store.GetByID(ctx, id)
}

func (s *TransactionStore) All(ctx context.Context) ([]domain.Transaction, error) {
	return s.store.All(ctx)
}

func (s *TransactionStore) Save(ctx context.Context, tran domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := tran.EntityID()
	old, exists, _ := s.store.GetByID(ctx, id)
	switch {
	case !exists:
		s.byAccount[tran.AccountID] = append(s.byAccount[tran.AccountID], id)
	case old.AccountID != tran.AccountID:
		s.byAccount[old.AccountID] = slices.DeleteFunc(s.byAccount[old.AccountID], func(v string) bool {
			return v == id
		})
		s.byAccount[tran.AccountID] = append(s.byAccount[tran.AccountID], id)
	}
	return s.store.Save(ctx, tran)
}

// ByAccount 依寫入順序回傳帳戶的所有交易
func (s *TransactionStore) ByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byAccount[accountID]
	out := make([]domain.Transaction, 0, len(ids))
	for _, id := range ids {
		if tran, ok, _ := s.store.GetByID(ctx, id); ok {
			out = append(out, tran)
		}
	}
	return out, nil
}

var (
	_ usecase.TransactionsRepository   = (*TransactionStore)(nil)
	_ usecase.AccountTransactionFinder = (*TransactionStore)(nil)
)
