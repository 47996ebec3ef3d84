package usecase

import (
	"context"
	"time"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// BalanceCalculator 以歷史交易計算帳戶餘額
// 純讀取，不持有任何鎖，可任意並行呼叫
type BalanceCalculator struct {
	accounts     AccountsRepository
	transactions TransactionsRepository
}

// NewBalanceCalculator 建立 BalanceCalculator
func NewBalanceCalculator(accounts AccountsRepository, transactions TransactionsRepository) *BalanceCalculator {
	return &BalanceCalculator{
		accounts:     accounts,
		transactions: transactions,
	}
}

// Sum 計算 accountID 在 cutoff (含) 之前所有交易的金額總和
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//	userID: 查詢者，必須是 owner 或 member
//	cutoff: 截止時間 (含)
//
// 回傳:
//
//	domain.Amount: 餘額
//	error: ErrAccountNotFound / ErrNotAllowed / 儲存層錯誤
func (c *BalanceCalculator) Sum(ctx context.Context, accountID, userID string, cutoff time.Time) (domain.Amount, error) {
	account, err := getAccount(ctx, c.accounts, accountID, domain.ActivitySumTransaction)
	if err != nil {
		return 0, err
	}
	if err := authorizeMember(account, userID); err != nil {
		return 0, domain.NewUseError(domain.ActivitySumTransaction, err)
	}
	return c.balance(ctx, accountID, cutoff)
}

// balance 不做權限檢查的加總，給已經通過 guard 的 ledger 使用
func (c *BalanceCalculator) balance(ctx context.Context, accountID string, cutoff time.Time) (domain.Amount, error) {
	atCutoff, _, err := c.balances(ctx, accountID, cutoff)
	return atCutoff, err
}

// balances 同時回傳 cutoff (含) 之前的餘額與所有已寫入交易的總和
func (c *BalanceCalculator) balances(ctx context.Context, accountID string, cutoff time.Time) (atCutoff, total domain.Amount, err error) {
	trans, err := c.accountTransactions(ctx, accountID)
	if err != nil {
		return 0, 0, err
	}

	for _, tran := range trans {
		if tran.AccountID != accountID {
			continue
		}
		total += tran.Amount
		if tran.NotAfter(cutoff) {
			atCutoff += tran.Amount
		}
	}
	return atCutoff, total, nil
}

func (c *BalanceCalculator) accountTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	if finder, ok := c.transactions.(AccountTransactionFinder); ok {
		return finder.ByAccount(ctx, accountID)
	}
	return c.transactions.All(ctx)
}
