package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/pkg/keylock"
)

// ChangeUser 使用者變更內容，nil 欄位不變
type ChangeUser struct {
	Name                         *string
	PersonalIdentificationNumber *string
}

// UserService 使用者管理
type UserService struct {
	users UsersRepository
	locks *keylock.KeyLock
	// uniqueMu 序列化「檢查身分證號 + 儲存」
	uniqueMu sync.Mutex
	logger   *zap.Logger
}

// NewUserService 建立 UserService
func NewUserService(users UsersRepository, opts ...Option) *UserService {
	o := buildOptions(opts)
	return &UserService{
		users:  users,
		locks:  o.locks,
		logger: o.logger,
	}
}

// CreateUser 建立使用者，身分證號必須唯一
func (s *UserService) CreateUser(ctx context.Context, name, personalIdentificationNumber string) (domain.User, error) {
	s.uniqueMu.Lock()
	defer s.uniqueMu.Unlock()

	if err := s.checkPersonalIDUnique(ctx, personalIdentificationNumber, domain.ActivityCreateUser); err != nil {
		return domain.User{}, err
	}
	user, err := s.users.Save(ctx, domain.NewUser(name, personalIdentificationNumber))
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Debug("user created", zap.String("user_id", user.ID))
	return user, nil
}

// ChangeUser 變更名稱或身分證號
//
// 新的身分證號重複時不儲存任何變更；沒有實際變更時不呼叫 Save
func (s *UserService) ChangeUser(ctx context.Context, userID string, change ChangeUser) (domain.User, error) {
	const activity = domain.ActivityUpdateUser

	unlock, err := s.locks.LockContext(ctx, userKey(userID))
	if err != nil {
		return domain.User{}, err
	}
	defer unlock()

	user, ok, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.NewUseError(activity, domain.ErrUserNotFound)
	}

	updated := user
	if change.Name != nil {
		updated = updated.WithName(*change.Name)
	}
	if change.PersonalIdentificationNumber != nil && *change.PersonalIdentificationNumber != user.PersonalIdentificationNumber {
		s.uniqueMu.Lock()
		defer s.uniqueMu.Unlock()
		if err := s.checkPersonalIDUnique(ctx, *change.PersonalIdentificationNumber, activity); err != nil {
			return domain.User{}, err
		}
		updated = updated.WithPersonalID(*change.PersonalIdentificationNumber)
	}

	if updated == user {
		return user, nil
	}
	return s.users.Save(ctx, updated)
}

// InactivateUser 停用使用者
func (s *UserService) InactivateUser(ctx context.Context, userID string) (domain.User, error) {
	unlock, err := s.locks.LockContext(ctx, userKey(userID))
	if err != nil {
		return domain.User{}, err
	}
	defer unlock()

	user, err := getUser(ctx, s.users, userID, domain.ActivityUpdateUser)
	if err != nil {
		return domain.User{}, err
	}
	return s.users.Save(ctx, user.Deactivated())
}

// GetUser 依 ID 查詢
func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, bool, error) {
	return s.users.GetByID(ctx, userID)
}

// FindUsers 以名稱搜尋啟用中的使用者 (不分大小寫)
func (s *UserService) FindUsers(ctx context.Context, search string, page *Page, order UserSortOrder) ([]domain.User, error) {
	all, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}

	found := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.Active && containsFold(u.Name, search) {
			found = append(found, u)
		}
	}
	if err := sortUsers(found, order); err != nil {
		return nil, err
	}
	return applyPage(found, page), nil
}

func (s *UserService) checkPersonalIDUnique(ctx context.Context, personalIdentificationNumber string, activity domain.Activity) error {
	all, err := s.users.All(ctx)
	if err != nil {
		return err
	}
	for _, u := range all {
		if u.PersonalIdentificationNumber == personalIdentificationNumber {
			return domain.NewUseError(activity, domain.ErrPersonalIDNotUnique)
		}
	}
	return nil
}
