package mysql

import (
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// sqlUser 對應資料庫的 users 表
type sqlUser struct {
	ID         string `gorm:"primaryKey;type:char(36)"`
	Name       string `gorm:"size:255"`
	PersonalID string `gorm:"column:personal_id;size:64;index"`
	Active     bool
	CreatedAt  int64 `gorm:"autoCreateTime:milli"` // 自動寫入時間
	UpdatedAt  int64 `gorm:"autoUpdateTime:milli"` // 自動更新時間
}

func (*sqlUser) TableName() string {
	return "users"
}

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID        string `gorm:"primaryKey;type:char(36)"`
	OwnerID   string `gorm:"type:char(36);index"`
	Name      string `gorm:"size:191;uniqueIndex"`
	Active    bool
	CreatedAt int64 `gorm:"autoCreateTime:milli"`
	UpdatedAt int64 `gorm:"autoUpdateTime:milli"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// sqlAccountMember 對應 account_members 表 (帳戶成員，不含 owner)
type sqlAccountMember struct {
	AccountID string `gorm:"primaryKey;type:char(36)"`
	UserID    string `gorm:"primaryKey;type:char(36)"`
	Position  int    // 加入順序
}

func (*sqlAccountMember) TableName() string {
	return "account_members"
}

// sqlTransaction 對應資料庫的 transactions 表
type sqlTransaction struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	RefID     []byte    `gorm:"column:ref_id;type:binary(16);uniqueIndex"` // 對應 domain.Transaction.ID
	AccountID string    `gorm:"type:char(36);index"`
	UserID    string    `gorm:"type:char(36)"`
	Amount    int64     // 最小單位 (1/domain.CurrencyScale)
	Created   time.Time `gorm:"column:created;index"` // 呼叫端提供的交易時間
	CreatedAt int64     `gorm:"autoCreateTime:milli"` // 自動寫入時間
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

func toSQLUser(u domain.User) sqlUser {
	return sqlUser{
		ID:         u.ID,
		Name:       u.Name,
		PersonalID: u.PersonalIdentificationNumber,
		Active:     u.Active,
	}
}

func (r sqlUser) toDomain() domain.User {
	return domain.User{
		ID:                           r.ID,
		Name:                         r.Name,
		PersonalIdentificationNumber: r.PersonalID,
		Active:                       r.Active,
	}
}

func toSQLAccount(a domain.Account) (sqlAccount, []sqlAccountMember) {
	members := make([]sqlAccountMember, 0, len(a.Members))
	for i, userID := range a.Members {
		members = append(members, sqlAccountMember{AccountID: a.ID, UserID: userID, Position: i})
	}
	return sqlAccount{
		ID:      a.ID,
		OwnerID: a.OwnerID,
		Name:    a.Name,
		Active:  a.Active,
	}, members
}

// toDomain members 需已依 Position 排序
func (r sqlAccount) toDomain(members []sqlAccountMember) domain.Account {
	a := domain.Account{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		Name:    r.Name,
		Active:  r.Active,
	}
	for _, m := range members {
		a.Members = append(a.Members, m.UserID)
	}
	return a
}

func toSQLTransaction(t domain.Transaction) sqlTransaction {
	return sqlTransaction{
		RefID:     t.ID[:],
		AccountID: t.AccountID,
		UserID:    t.UserID,
		Amount:    int64(t.Amount),
		Created:   t.Created,
	}
}

func (r sqlTransaction) toDomain() (domain.Transaction, error) {
	id, err := uuid.FromBytes(r.RefID)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		Created:   r.Created.In(time.Local),
		UserID:    r.UserID,
		AccountID: r.AccountID,
		Amount:    domain.Amount(r.Amount),
		ID:        id,
	}, nil
}
