package usecase

import "github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"

// authorizeMember 使用者必須是 owner 或 member
func authorizeMember(account domain.Account, userID string) error {
	if !account.CanAct(userID) {
		return domain.ErrNotAllowed
	}
	return nil
}

// authorize 交易前檢查：帳戶啟用中，且使用者是 owner 或 member
func authorize(account domain.Account, userID string) error {
	if !account.Active {
		return domain.ErrAccountNotActive
	}
	return authorizeMember(account, userID)
}

// authorizeOwner 帳戶變更 (改名 / 停用 / 成員) 只允許 owner
func authorizeOwner(account domain.Account, userID string) error {
	if !account.IsOwner(userID) {
		return domain.ErrNotOwner
	}
	return nil
}
