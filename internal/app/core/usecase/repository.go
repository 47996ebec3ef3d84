package usecase

import (
	"context"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// Repository 依 ID 保存實體的儲存介面
//
// Save 是 insert-or-replace，同 ID 重複儲存結果相同；
// All 回傳快照，之後的 Save 不會改變已回傳的 slice
type Repository[T domain.Entity] interface {
	// GetByID 找不到時回傳 ok=false，err 只用於儲存層本身的錯誤
	GetByID(ctx context.Context, id string) (entity T, ok bool, err error)
	All(ctx context.Context) ([]T, error)
	Save(ctx context.Context, entity T) (T, error)
}

type (
	UsersRepository        = Repository[domain.User]
	AccountsRepository     = Repository[domain.Account]
	TransactionsRepository = Repository[domain.Transaction]
)

// AccountTransactionFinder 選配介面：儲存層可以直接依帳戶查詢交易，
// 沒實作時 BalanceCalculator 會掃描 All()
type AccountTransactionFinder interface {
	ByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error)
}
