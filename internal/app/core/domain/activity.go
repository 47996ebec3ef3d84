package domain

// Activity 發生錯誤時正在執行的操作
type Activity uint8

const (
	ActivityCreateUser Activity = iota + 1
	ActivityUpdateUser
	ActivityCreateAccount
	ActivityUpdateAccount
	ActivityInactivateAccount
	ActivityFindAccount
	ActivityCreateTransaction
	ActivitySumTransaction
)

func (a Activity) String() string {
	switch a {
	case ActivityCreateUser:
		return "create_user"
	case ActivityUpdateUser:
		return "update_user"
	case ActivityCreateAccount:
		return "create_account"
	case ActivityUpdateAccount:
		return "update_account"
	case ActivityInactivateAccount:
		return "inactivate_account"
	case ActivityFindAccount:
		return "find_account"
	case ActivityCreateTransaction:
		return "create_transaction"
	case ActivitySumTransaction:
		return "sum_transaction"
	default:
		return "unknown"
	}
}

// UseError 包裝 use case 失敗：哪個操作 + 哪種錯誤
//
// errors.Is(err, domain.ErrInsufficientFunds) 仍然成立
type UseError struct {
	Activity Activity
	Err      error
}

// NewUseError 建立 UseError
func NewUseError(activity Activity, err error) *UseError {
	return &UseError{Activity: activity, Err: err}
}

func (e *UseError) Error() string {
	return e.Activity.String() + ": " + e.Err.Error()
}

func (e *UseError) Unwrap() error {
	return e.Err
}
