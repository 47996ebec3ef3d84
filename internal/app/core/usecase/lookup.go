package usecase

import (
	"context"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// getUser 查詢使用者，找不到時以 activity 包裝 ErrUserNotFound
func getUser(ctx context.Context, users UsersRepository, id string, activity domain.Activity) (domain.User, error) {
	user, ok, err := users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.NewUseError(activity, domain.ErrUserNotFound)
	}
	return user, nil
}

// getAccount 查詢帳戶，找不到時以 activity 包裝 ErrAccountNotFound
func getAccount(ctx context.Context, accounts AccountsRepository, id string, activity domain.Activity) (domain.Account, error) {
	account, ok, err := accounts.GetByID(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}
	if !ok {
		return domain.Account{}, domain.NewUseError(activity, domain.ErrAccountNotFound)
	}
	return account, nil
}
