package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/pkg/keylock"
)

// TransactionService 帳本核心：驗證餘額並寫入交易
//
// 結構:
//
//	calculator: 依歷史交易計算餘額
//	locks: 依帳戶 ID 的互斥鎖，同一帳戶的「檢查餘額 + 寫入」同時只有一個
//	monitors: 交易寫入後非同步通知
type TransactionService struct {
	users        UsersRepository
	accounts     AccountsRepository
	transactions TransactionsRepository

	calculator *BalanceCalculator
	locks      *keylock.KeyLock
	monitors   *Monitors
	// ownMonitors 由自己建立的 dispatcher，Close 時一併關閉
	ownMonitors bool
	logger      *zap.Logger
}

// NewTransactionService 建立 TransactionService
//
// 參數:
//
//	users, accounts, transactions: 三個 repository
//	opts: WithLogger / WithKeyLock / WithMonitors
//
// 回傳:
//
//	*TransactionService: 實例，用完需呼叫 Close
func NewTransactionService(users UsersRepository, accounts AccountsRepository, transactions TransactionsRepository, opts ...Option) *TransactionService {
	o := buildOptions(opts)
	s := &TransactionService{
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		calculator:   NewBalanceCalculator(accounts, transactions),
		locks:        o.locks,
		monitors:     o.monitors,
		logger:       o.logger,
	}
	if s.monitors == nil {
		s.monitors = NewMonitors(MonitorConfig{}, o.logger)
		s.ownMonitors = true
	}
	return s
}

// CreateTransaction 建立一筆交易
//
// 參數:
//
//	ctx: 上下文，在取得帳戶鎖之前取消不會留下任何狀態
//	created: 交易時間 "YYYY-MM-DD HH:MM"
//	userID: 執行者，必須是 owner 或 member
//	accountID: 帳戶 ID
//	amount: 正數存入，負數提出
//
// 回傳:
//
//	domain.Transaction: 已寫入的交易
//	error: ErrUserNotFound / ErrAccountNotFound / ErrInvalidTimestamp /
//	       ErrAccountNotActive / ErrNotAllowed / ErrInsufficientFunds /
//	       ErrInvalidAmount (餘額溢位)
//
// 任何錯誤都不會寫入資料；monitor 在回傳前或後被呼叫都有可能
func (s *TransactionService) CreateTransaction(ctx context.Context, created, userID, accountID string, amount domain.Amount) (domain.Transaction, error) {
	const activity = domain.ActivityCreateTransaction

	user, err := getUser(ctx, s.users, userID, activity)
	if err != nil {
		return domain.Transaction{}, err
	}
	if _, err := getAccount(ctx, s.accounts, accountID, activity); err != nil {
		return domain.Transaction{}, err
	}
	when, err := domain.ParseTimestamp(created)
	if err != nil {
		return domain.Transaction{}, domain.NewUseError(activity, err)
	}

	tran, err := s.commit(ctx, user, accountID, when, amount)
	if err != nil {
		s.logger.Info("transaction rejected",
			zap.String("account_id", accountID),
			zap.String("user_id", userID),
			zap.Stringer("amount", amount),
			zap.Error(err))
		return domain.Transaction{}, err
	}

	// 通知在鎖外進行，慢的 monitor 不會卡住下一筆交易
	s.monitors.Publish(tran)
	return tran, nil
}

// commit 持有帳戶鎖：重新讀取帳戶 -> guard -> 計算餘額 -> 寫入
func (s *TransactionService) commit(ctx context.Context, user domain.User, accountID string, when time.Time, amount domain.Amount) (domain.Transaction, error) {
	const activity = domain.ActivityCreateTransaction

	unlock, err := s.locks.LockContext(ctx, accountKey(accountID))
	if err != nil {
		return domain.Transaction{}, err
	}
	defer unlock()

	// 等鎖期間帳戶可能被停用或移除成員，以鎖內讀到的為準
	account, err := getAccount(ctx, s.accounts, accountID, activity)
	if err != nil {
		return domain.Transaction{}, err
	}
	if err := authorize(account, user.ID); err != nil {
		return domain.Transaction{}, domain.NewUseError(activity, err)
	}

	// 交易時間點的餘額與包含所有已寫入交易的目前餘額都不能變負
	atCutoff, total, err := s.calculator.balances(ctx, accountID, when)
	if err != nil {
		return domain.Transaction{}, err
	}
	balance, ok := atCutoff.Add(amount)
	if !ok {
		return domain.Transaction{}, domain.NewUseError(activity, domain.ErrInvalidAmount)
	}
	after, ok := total.Add(amount)
	if !ok {
		return domain.Transaction{}, domain.NewUseError(activity, domain.ErrInvalidAmount)
	}
	if balance < 0 || after < 0 {
		return domain.Transaction{}, domain.NewUseError(activity, domain.ErrInsufficientFunds)
	}

	tran, err := s.transactions.Save(ctx, domain.NewTransaction(when, user.ID, account.ID, amount))
	if err != nil {
		return domain.Transaction{}, err
	}
	s.logger.Debug("transaction committed",
		zap.String("transaction_id", tran.EntityID()),
		zap.String("account_id", accountID),
		zap.Stringer("amount", amount),
		zap.Stringer("balance", after))
	return tran, nil
}

// Sum 計算帳戶在 created (含) 之前的餘額
func (s *TransactionService) Sum(ctx context.Context, created, userID, accountID string) (domain.Amount, error) {
	account, err := getAccount(ctx, s.accounts, accountID, domain.ActivitySumTransaction)
	if err != nil {
		return 0, err
	}
	if err := authorizeMember(account, userID); err != nil {
		return 0, domain.NewUseError(domain.ActivitySumTransaction, err)
	}
	when, err := domain.ParseTimestamp(created)
	if err != nil {
		return 0, domain.NewUseError(domain.ActivitySumTransaction, err)
	}
	return s.calculator.balance(ctx, accountID, when)
}

// Calculator 回傳底層的 BalanceCalculator
func (s *TransactionService) Calculator() *BalanceCalculator {
	return s.calculator
}

// AddMonitor 註冊交易通知
func (s *TransactionService) AddMonitor(monitor Monitor) {
	s.monitors.Add(monitor)
}

// Close 關閉自己建立的 dispatcher，等待剩下的通知送完
func (s *TransactionService) Close(ctx context.Context) error {
	if !s.ownMonitors {
		return nil
	}
	return s.monitors.Close(ctx)
}
