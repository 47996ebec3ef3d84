package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/mysql"
)

// Migrate 建立 / 更新資料表
func Migrate(client *mysql.Client) error {
	return client.DB().AutoMigrate(&sqlUser{}, &sqlAccount{}, &sqlAccountMember{}, &sqlTransaction{})
}

// UserRepository users 表
type UserRepository struct {
	client *mysql.Client
}

func NewUserRepository(client *mysql.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, bool, error) {
	var row sqlUser
	err := r.client.DB().WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *UserRepository) All(ctx context.Context) ([]domain.User, error) {
	var rows []sqlUser
	if err := r.client.DB().WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Save 依主鍵 upsert，更新時保留 created_at
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	row := toSQLUser(user)
	if err := r.client.DB().WithContext(ctx).Clauses(upsertByID(userUpdateColumns)).Create(&row).Error; err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// AccountRepository accounts + account_members 表
type AccountRepository struct {
	client *mysql.Client
}

func NewAccountRepository(client *mysql.Client) *AccountRepository {
	return &AccountRepository{client: client}
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, bool, error) {
	db := r.client.DB().WithContext(ctx)

	var row sqlAccount
	err := db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, false, nil
	}
	if err != nil {
		return domain.Account{}, false, fmt.Errorf("select account: %w", err)
	}

	var members []sqlAccountMember
	if err := db.Where("account_id = ?", id).Order("position").Find(&members).Error; err != nil {
		return domain.Account{}, false, fmt.Errorf("select account members: %w", err)
	}
	return row.toDomain(members), true, nil
}

func (r *AccountRepository) All(ctx context.Context) ([]domain.Account, error) {
	db := r.client.DB().WithContext(ctx)

	var rows []sqlAccount
	if err := db.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	var members []sqlAccountMember
	if err := db.Order("account_id, position").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("select account members: %w", err)
	}
	return joinMembers(rows, members), nil
}

// Save 在同一個 DB transaction 內更新帳戶與成員
func (r *AccountRepository) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	row, members := toSQLAccount(account)
	err := r.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(upsertByID(accountUpdateColumns)).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", row.ID).Delete(&sqlAccountMember{}).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}
	return account.Clone(), nil
}

// 主鍵衝突時只更新這些欄位，created_at 維持第一次寫入的值
var (
	userUpdateColumns    = []string{"name", "personal_id", "active", "updated_at"}
	accountUpdateColumns = []string{"owner_id", "name", "active", "updated_at"}
)

func upsertByID(columns []string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}
}

// joinMembers members 需已依 account_id, position 排序
func joinMembers(rows []sqlAccount, members []sqlAccountMember) []domain.Account {
	byAccount := make(map[string][]sqlAccountMember, len(rows))
	for _, m := range members {
		byAccount[m.AccountID] = append(byAccount[m.AccountID], m)
	}
	out := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(byAccount[row.ID]))
	}
	return out
}

// TransactionRepository transactions 表
type TransactionRepository struct {
	client *mysql.Client
}

func NewTransactionRepository(client *mysql.Client) *TransactionRepository {
	return &TransactionRepository{client: client}
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (domain.Transaction, bool, error) {
	ref, err := uuid.Parse(id)
	if err != nil {
		return domain.Transaction{}, false, nil
	}

	var row sqlTransaction
	err = r.client.DB().WithContext(ctx).Where("ref_id = ?", ref[:]).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Transaction{}, false, nil
	}
	if err != nil {
		return domain.Transaction{}, false, fmt.Errorf("select transaction: %w", err)
	}
	tran, err := row.toDomain()
	if err != nil {
		return domain.Transaction{}, false, err
	}
	return tran, true, nil
}

func (r *TransactionRepository) All(ctx context.Context) ([]domain.Transaction, error) {
	return r.find(r.client.DB().WithContext(ctx))
}

// ByAccount 直接以 account_id 索引查詢，避免 BalanceCalculator 掃描全表
func (r *TransactionRepository) ByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	return r.find(r.client.DB().WithContext(ctx).Where("account_id = ?", accountID))
}

// Save 以 ref_id 判斷重複：已存在則更新，重複儲存結果相同
func (r *TransactionRepository) Save(ctx context.Context, tran domain.Transaction) (domain.Transaction, error) {
	row := toSQLTransaction(tran)
	err := r.client.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ref_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_id", "user_id", "amount", "created"}),
	}).Create(&row).Error
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	return tran, nil
}

func (r *TransactionRepository) find(db *gorm.DB) ([]domain.Transaction, error) {
	var rows []sqlTransaction
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		tran, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, tran)
	}
	return out, nil
}

var (
	_ usecase.UsersRepository          = (*UserRepository)(nil)
	_ usecase.AccountsRepository       = (*AccountRepository)(nil)
	_ usecase.TransactionsRepository   = (*TransactionRepository)(nil)
	_ usecase.AccountTransactionFinder = (*TransactionRepository)(nil)
)
