package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout 交易時間的輸入格式 (24 小時制, 本地時區)
const TimestampLayout = "2006-01-02 15:04"

// Transaction 交易，建立後不可變更
// 注意欄位排序以避免 Padding
type Transaction struct {
	// Created: 呼叫端提供的交易時間
	Created time.Time
	// UserID: 執行交易的使用者
	UserID string
	// AccountID: 交易所屬帳戶
	AccountID string
	// Amount: 正數存入，負數提出
	Amount Amount
	// ID: 由 ledger 分配的 UUID
	ID uuid.UUID
}

// NewTransaction 以新的 UUID 建立交易
func NewTransaction(created time.Time, userID, accountID string, amount Amount) Transaction {
	return Transaction{
		Created:   created,
		UserID:    userID,
		AccountID: accountID,
		Amount:    amount,
		ID:        uuid.New(),
	}
}

func (t Transaction) EntityID() string {
	return t.ID.String()
}

// NotAfter 交易時間 <= cutoff
func (t Transaction) NotAfter(cutoff time.Time) bool {
	return !t.Created.After(cutoff)
}

// ParseTimestamp 以本地時區解析 "YYYY-MM-DD HH:MM"
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return t, nil
}
