package domain

import "errors"

// Kind 錯誤分類，與實作型別無關
// 上層 (gRPC / CLI) 只需要看 Kind 就能決定回應碼
type Kind uint8

const (
	KindUnknown Kind = iota
	// 找不到 user / account / transaction
	KindNotFound
	// 帳戶或使用者已停用
	KindNotActive
	// 權限不足 (非 owner / member)
	KindNotAllowed
	// 名稱或身分證號重複
	KindNotUnique
	// 輸入格式錯誤 (時間、金額)
	KindInvalidInput
	// 餘額不足
	KindInsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindNotActive:
		return "not_active"
	case KindNotAllowed:
		return "not_allowed"
	case KindNotUnique:
		return "not_unique"
	case KindInvalidInput:
		return "invalid_input"
	case KindInsufficientFunds:
		return "insufficient_funds"
	default:
		return "unknown"
	}
}

// kindError 帶有分類的 sentinel error
type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string {
	return e.msg
}

func newError(kind Kind, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	// ErrUserNotFound 找不到使用者
	ErrUserNotFound = newError(KindNotFound, "user not found")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = newError(KindNotFound, "account not found")

	// ErrAccountNotActive 帳戶已停用
	ErrAccountNotActive = newError(KindNotActive, "account not active")

	// ErrUserNotActive 使用者已停用
	ErrUserNotActive = newError(KindNotActive, "user not active")

	// ErrNotAllowed 使用者不是帳戶的 owner 也不是 member
	ErrNotAllowed = newError(KindNotAllowed, "not allowed")

	// ErrNotOwner 只有 owner 可以執行
	ErrNotOwner = newError(KindNotAllowed, "not owner")

	// ErrCannotAddOwnerAsUser owner 不能再被加入成 member
	ErrCannotAddOwnerAsUser = newError(KindNotAllowed, "cannot add owner as user")

	// ErrUserAlreadyAssigned 使用者已經是帳戶 member
	ErrUserAlreadyAssigned = newError(KindNotAllowed, "user already assigned to this account")

	// ErrUserNotAssigned 使用者不是帳戶 member
	ErrUserNotAssigned = newError(KindNotAllowed, "user not assigned to this account")

	// ErrAccountNameNotUnique 帳戶名稱重複
	ErrAccountNameNotUnique = newError(KindNotUnique, "account name not unique")

	// ErrPersonalIDNotUnique 身分證號重複
	ErrPersonalIDNotUnique = newError(KindNotUnique, "personal identification number not unique")

	// ErrInvalidTimestamp 時間格式錯誤 (need "YYYY-MM-DD HH:MM")
	ErrInvalidTimestamp = newError(KindInvalidInput, "invalid timestamp")

	// ErrInvalidAmount 金額無法以 CurrencyScale 精確表示
	ErrInvalidAmount = newError(KindInvalidInput, "invalid amount")

	// ErrInvalidSortOrder 不支援的排序方式
	ErrInvalidSortOrder = newError(KindInvalidInput, "invalid sort order")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = newError(KindInsufficientFunds, "insufficient funds")
)

// KindOf 回傳 err 鏈中第一個 domain 錯誤的分類
// 非 domain 錯誤 (DB 連線失敗等) 回傳 KindUnknown
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindUnknown
}
