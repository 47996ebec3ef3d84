package usecase

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/pkg/keylock"
)

// AccountService 帳戶管理
//
// 同一帳戶的變更以 locks 序列化；與 TransactionService 共用 locks 時，
// 停用帳戶和交易也不會交錯
type AccountService struct {
	users    UsersRepository
	accounts AccountsRepository
	locks    *keylock.KeyLock
	// nameMu 序列化「檢查帳戶名稱 + 儲存」
	nameMu sync.Mutex
	logger *zap.Logger
}

// NewAccountService 建立 AccountService
func NewAccountService(users UsersRepository, accounts AccountsRepository, opts ...Option) *AccountService {
	o := buildOptions(opts)
	return &AccountService{
		users:    users,
		accounts: accounts,
		locks:    o.locks,
		logger:   o.logger,
	}
}

// CreateAccount 由 userID 建立帳戶並成為 owner，名稱必須唯一
func (s *AccountService) CreateAccount(ctx context.Context, userID, name string) (domain.Account, error) {
	const activity = domain.ActivityCreateAccount

	user, err := getUser(ctx, s.users, userID, activity)
	if err != nil {
		return domain.Account{}, err
	}
	if !user.Active {
		return domain.Account{}, domain.NewUseError(activity, domain.ErrUserNotActive)
	}

	s.nameMu.Lock()
	defer s.nameMu.Unlock()
	if err := s.checkNameUnique(ctx, name, activity); err != nil {
		return domain.Account{}, err
	}
	account, err := s.accounts.Save(ctx, domain.NewAccount(user.ID, name))
	if err != nil {
		return domain.Account{}, err
	}
	s.logger.Debug("account created",
		zap.String("account_id", account.ID),
		zap.String("owner_id", user.ID))
	return account, nil
}

// ChangeAccount 改名，只有 owner 可以對啟用中的帳戶操作
//
// 名稱與原本相同時不做任何事
func (s *AccountService) ChangeAccount(ctx context.Context, userID, accountID, name string) (domain.Account, error) {
	const activity = domain.ActivityUpdateAccount

	unlock, err := s.locks.LockContext(ctx, accountKey(accountID))
	if err != nil {
		return domain.Account{}, err
	}
	defer unlock()

	account, err := getAccount(ctx, s.accounts, accountID, activity)
	if err != nil {
		return domain.Account{}, err
	}
	if err := authorizeOwner(account, userID); err != nil {
		return domain.Account{}, domain.NewUseError(activity, err)
	}
	if !account.Active {
		return domain.Account{}, domain.NewUseError(activity, domain.ErrAccountNotActive)
	}
	if account.Name == name {
		return account, nil
	}

	s.nameMu.Lock()
	defer s.nameMu.Unlock()
	if err := s.checkNameUnique(ctx, name, activity); err != nil {
		return domain.Account{}, err
	}
	return s.accounts.Save(ctx, account.WithName(name))
}

// AddUserToAccount owner 將 assignedID 加入帳戶成員
func (s *AccountService) AddUserToAccount(ctx context.Context, ownerID, accountID, assignedID string) (domain.Account, error) {
	const activity = domain.ActivityUpdateAccount

	assigned, err := getUser(ctx, s.users, assignedID, activity)
	if err != nil {
		return domain.Account{}, err
	}

	unlock, err := s.locks.LockContext(ctx, accountKey(accountID))
	if err != nil {
		return domain.Account{}, err
	}
	defer unlock()

	account, err := getAccount(ctx, s.accounts, accountID, activity)
	if err != nil {
		return domain.Account{}, err
	}
	if !account.Active {
		return domain.Account{}, domain.NewUseError(activity, domain.ErrAccountNotActive)
	}
	if account.IsOwner(assigned.ID) {
		return domain.Account{}, domain.NewUseError(activity, domain.ErrCannotAddOwnerAsUser)
	}
	if account.IsMember(assigned.ID) {
		return domain.Account{}, domain.NewUseError(activity, domain.ErrUserAlreadyAssigned)
	}
	if err := authorizeOwner(account, ownerID); err != nil {
		return domain.Account{}, domain.NewUseError(activity, err)
	}
	return s.accounts.Save(ctx, account.WithMember(assigned.ID))
}

// RemoveUserFromAccount owner 將 assignedID 移出帳戶成員
func (s *AccountService) RemoveUserFromAccount(ctx context.Context, ownerID, accountID, assignedID string) (domain.Account, error) {
	const activity = domain.ActivityUpdateAccount

	unlock, err := s.locks.LockContext(ctx, accountKey(accountID))
	if err != nil {
		return domain.Account{}, err
	}
	defer unlock()

	account, err := getAccount(ctx, s.accounts, accountID, activity)
	if err != nil {
		return domain.Account{}, err
	}
	if _, err := getUser(ctx, s.users, assignedID, activity); err != nil {
		return domain.Account{}, err
	}
	if err := authorizeOwner(account, ownerID); err != nil {
		return domain.Account{}, domain.NewUseError(activity, err)
	}
	if !account.IsMember(assignedID) {
		return domain.Account{}, domain.NewUseError(activity, domain.ErrUserNotAssigned)
	}
	return s.accounts.Save(ctx, account.WithoutMember(assignedID))
}

// InactivateAccount owner 停用帳戶 (無法再啟用)
func (s *AccountService) InactivateAccount(ctx context.Context, userID, accountID string) (domain.Account, error) {
	const activity = domain.ActivityInactivateAccount

	user, err := getUser(ctx, s.users, userID, activity)
	if err != nil {
		return domain.Account{}, err
	}

	unlock, err := s.locks.LockContext(ctx, accountKey(accountID))
	if err != nil {
		return domain.Account{}, err
	}
	defer unlock()

	account, err := getAccount(ctx, s.accounts, accountID, activity)
	if err != nil {
		return domain.Account{}, err
	}
	if !account.Active {
		return domain.Account{}, domain.NewUseError(activity, domain.ErrAccountNotActive)
	}
	if err := authorizeOwner(account, user.ID); err != nil {
		return domain.Account{}, domain.NewUseError(activity, err)
	}

	account, err = s.accounts.Save(ctx, account.Deactivated())
	if err != nil {
		return domain.Account{}, err
	}
	s.logger.Info("account inactivated", zap.String("account_id", accountID))
	return account, nil
}

// FindAccounts 查詢帳戶
//
// AccountSortName: 全部帳戶依名稱排序
// AccountSortNone: 有 userID 時只回傳該使用者可操作的帳戶，
// 否則以 search 比對名稱 (不分大小寫)，search 為空時回傳全部
func (s *AccountService) FindAccounts(ctx context.Context, search, userID string, page *Page, order AccountSortOrder) ([]domain.Account, error) {
	all, err := s.accounts.All(ctx)
	if err != nil {
		return nil, err
	}

	var found []domain.Account
	switch order {
	case AccountSortName:
		found = all
		slices.SortStableFunc(found, func(a, b domain.Account) int {
			return cmp.Compare(a.Name, b.Name)
		})
	case AccountSortNone:
		found = make([]domain.Account, 0, len(all))
		for _, a := range all {
			switch {
			case userID != "":
				if a.CanAct(userID) {
					found = append(found, a)
				}
			case containsFold(a.Name, search):
				found = append(found, a)
			}
		}
	default:
		return nil, domain.NewUseError(domain.ActivityFindAccount, domain.ErrInvalidSortOrder)
	}
	return applyPage(found, page), nil
}

func (s *AccountService) checkNameUnique(ctx context.Context, name string, activity domain.Activity) error {
	all, err := s.accounts.All(ctx)
	if err != nil {
		return err
	}
	for _, a := range all {
		if a.Name == name {
			return domain.NewUseError(activity, domain.ErrAccountNameNotUnique)
		}
	}
	return nil
}
