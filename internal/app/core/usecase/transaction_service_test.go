package usecase_test

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/keylock"
)

const t0 = "2024-01-10 12:00"

// fixture 一組共用 repository 與鎖表的 service
type fixture struct {
	users        *memory.Store[domain.User]
	accounts     *memory.Store[domain.Account]
	transactions usecase.TransactionsRepository

	userSvc    *usecase.UserService
	accountSvc *usecase.AccountService
	tranSvc    *usecase.TransactionService

	owner   domain.User
	member  domain.User
	outside domain.User
	account domain.Account
}

func newFixture(t *testing.T, transactions usecase.TransactionsRepository) *fixture {
	t.Helper()
	ctx := context.Background()
	if transactions == nil {
		transactions = memory.NewTransactionStore()
	}

	f := &fixture{
		users:        memory.NewStore[domain.User](),
		accounts:     memory.NewStore[domain.Account](),
		transactions: transactions,
	}
	locks := keylock.New()
	f.userSvc = usecase.NewUserService(f.users, usecase.WithKeyLock(locks))
	f.accountSvc = usecase.NewAccountService(f.users, f.accounts, usecase.WithKeyLock(locks))
	f.tranSvc = usecase.NewTransactionService(f.users, f.accounts, f.transactions, usecase.WithKeyLock(locks))
	t.Cleanup(func() {
		_ = f.tranSvc.Close(context.Background())
	})

	var err error
	f.owner, err = f.userSvc.CreateUser(ctx, "Owner", "1001")
	require.NoError(t, err)
	f.member, err = f.userSvc.CreateUser(ctx, "Member", "1002")
	require.NoError(t, err)
	f.outside, err = f.userSvc.CreateUser(ctx, "Outside", "1003")
	require.NoError(t, err)
	f.account, err = f.accountSvc.CreateAccount(ctx, f.owner.ID, "household")
	require.NoError(t, err)
	f.account, err = f.accountSvc.AddUserToAccount(ctx, f.owner.ID, f.account.ID, f.member.ID)
	require.NoError(t, err)
	return f
}

func units(n int64) domain.Amount {
	return domain.Amount(n * domain.CurrencyScale)
}

func (f *fixture) deposit(t *testing.T, amount domain.Amount) {
	t.Helper()
	_, err := f.tranSvc.CreateTransaction(context.Background(), t0, f.owner.ID, f.account.ID, amount)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T) domain.Amount {
	t.Helper()
	sum, err := f.tranSvc.Sum(context.Background(), "2099-01-01 00:00", f.owner.ID, f.account.ID)
	require.NoError(t, err)
	return sum
}

func TestInsufficientFundsScenario(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.deposit(t, units(100))

	_, err := f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, units(-150))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, domain.KindInsufficientFunds, domain.KindOf(err))
	assert.Equal(t, units(100), f.balance(t))

	tran, err := f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, units(-50))
	require.NoError(t, err)
	assert.Equal(t, units(-50), tran.Amount)
	assert.Equal(t, f.account.ID, tran.AccountID)
	assert.Equal(t, f.owner.ID, tran.UserID)
	assert.Equal(t, units(50), f.balance(t))

	// 剛好歸零是允許的
	_, err = f.tranSvc.CreateTransaction(ctx, t0, f.member.ID, f.account.ID, units(-50))
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(0), f.balance(t))
}

func TestCreateTransactionErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.tranSvc.CreateTransaction(ctx, t0, "nobody", f.account.ID, 1)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, "nothing", 1)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = f.tranSvc.CreateTransaction(ctx, "10/01/2024", f.owner.ID, f.account.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)

	_, err = f.tranSvc.CreateTransaction(ctx, t0, f.outside.ID, f.account.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotAllowed)

	_, err = f.accountSvc.InactivateAccount(ctx, f.owner.ID, f.account.ID)
	require.NoError(t, err)
	_, err = f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, 1)
	assert.ErrorIs(t, err, domain.ErrAccountNotActive)

	all, err := f.transactions.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSum(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, c := range []struct {
		at     string
		amount domain.Amount
	}{
		{"2024-01-01 08:00", units(100)},
		{"2024-01-02 08:00", units(-30)},
		{"2024-01-03 08:00", units(5)},
	} {
		_, err := f.tranSvc.CreateTransaction(ctx, c.at, f.owner.ID, f.account.ID, c.amount)
		require.NoError(t, err)
	}

	sum, err := f.tranSvc.Sum(ctx, "2024-01-02 08:00", f.member.ID, f.account.ID)
	require.NoError(t, err)
	assert.Equal(t, units(70), sum)

	// cutoff 之後的交易不影響結果
	_, err = f.tranSvc.CreateTransaction(ctx, "2024-02-01 08:00", f.owner.ID, f.account.ID, units(1000))
	require.NoError(t, err)
	again, err := f.tranSvc.Sum(ctx, "2024-01-02 08:00", f.member.ID, f.account.ID)
	require.NoError(t, err)
	assert.Equal(t, sum, again)

	early, err := f.tranSvc.Sum(ctx, "2023-12-31 23:59", f.owner.ID, f.account.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(0), early)

	_, err = f.tranSvc.Sum(ctx, t0, f.outside.ID, f.account.ID)
	assert.ErrorIs(t, err, domain.ErrNotAllowed)

	_, err = f.tranSvc.Sum(ctx, t0, f.owner.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = f.tranSvc.Sum(ctx, "yesterday", f.owner.ID, f.account.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)
}

func TestCalculatorSum(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.deposit(t, units(42))

	cutoff, err := domain.ParseTimestamp(t0)
	require.NoError(t, err)

	calc := f.tranSvc.Calculator()
	sum, err := calc.Sum(ctx, f.account.ID, f.member.ID, cutoff)
	require.NoError(t, err)
	assert.Equal(t, units(42), sum)

	_, err = calc.Sum(ctx, f.account.ID, f.outside.ID, cutoff)
	assert.ErrorIs(t, err, domain.ErrNotAllowed)

	// 沒有 ByAccount 的 repository 走 All() 掃描
	plain := usecase.NewBalanceCalculator(f.accounts, allOnly{f.transactions})
	sum, err = plain.Sum(ctx, f.account.ID, f.owner.ID, cutoff)
	require.NoError(t, err)
	assert.Equal(t, units(42), sum)
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.deposit(t, units(100))

	const n = 50
	var ok, rejected int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.tranSvc.CreateTransaction(ctx, t0, f.member.ID, f.account.ID, units(-10))
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case assert.ErrorIs(t, err, domain.ErrInsufficientFunds):
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(10), ok)
	assert.Equal(t, int32(n-10), rejected)
	assert.Equal(t, domain.Amount(0), f.balance(t))
}

func TestTwoConcurrentWithdrawalsExactlyOneWins(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t, nil)
		f.deposit(t, units(100))

		errs := make(chan error, 2)
		for j := 0; j < 2; j++ {
			go func() {
				_, err := f.tranSvc.CreateTransaction(context.Background(), t0, f.owner.ID, f.account.ID, units(-60))
				errs <- err
			}()
		}
		first, second := <-errs, <-errs
		if first == nil {
			require.ErrorIs(t, second, domain.ErrInsufficientFunds)
		} else {
			require.ErrorIs(t, first, domain.ErrInsufficientFunds)
			require.NoError(t, second)
		}
		assert.Equal(t, units(40), f.balance(t))
	}
}

func TestConcurrentDepositAndWithdrawalNoLostUpdate(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t, nil)
		ctx := context.Background()

		var wg sync.WaitGroup
		var committed int64
		for _, amount := range []domain.Amount{units(100), units(-100)} {
			wg.Add(1)
			go func(amount domain.Amount) {
				defer wg.Done()
				if _, err := f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, amount); err == nil {
					atomic.AddInt64(&committed, int64(amount))
				} else {
					assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
				}
			}(amount)
		}
		wg.Wait()

		// 提款先到會被拒絕 (餘額 100)；存款先到則兩筆都成功 (餘額 0)
		got := f.balance(t)
		assert.Equal(t, domain.Amount(committed), got)
		assert.Contains(t, []domain.Amount{0, units(100)}, got)
	}
}

func TestDifferentAccountsDoNotBlock(t *testing.T) {
	blocking := newBlockingTransactions()
	f := newFixture(t, blocking)
	ctx := context.Background()

	other, err := f.accountSvc.CreateAccount(ctx, f.owner.ID, "other")
	require.NoError(t, err)

	blocking.block(f.account.ID)
	go func() {
		_, _ = f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, units(1))
	}()
	<-blocking.entered

	done := make(chan error, 1)
	go func() {
		_, err := f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, other.ID, units(1))
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("commit on another account blocked")
	}

	// 同一帳戶要等前一筆完成；在取得鎖之前取消不留下任何交易
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = f.tranSvc.CreateTransaction(waitCtx, t0, f.owner.ID, f.account.ID, units(1))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	blocking.release()
	assert.Eventually(t, func() bool {
		return f.balance(t) == units(1)
	}, 2*time.Second, 10*time.Millisecond)

	trans, err := blocking.All(ctx)
	require.NoError(t, err)
	assert.Len(t, trans, 2)
}

func TestMonitorInvokedOnceEvenWhenItPanics(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	seen := make(chan domain.Transaction, 10)
	f.tranSvc.AddMonitor(func(tran domain.Transaction) {
		seen <- tran
		panic("monitor failure")
	})
	var calls int32
	f.tranSvc.AddMonitor(func(domain.Transaction) {
		atomic.AddInt32(&calls, 1)
	})

	tran, err := f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, units(25))
	require.NoError(t, err)

	select {
	case got := <-seen:
		assert.Equal(t, tran.ID, got.ID)
		assert.Equal(t, units(25), got.Amount)
		assert.Equal(t, f.account.ID, got.AccountID)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor not invoked")
	}

	// 被拒絕的交易不通知
	_, err = f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, units(-1000))
	require.Error(t, err)

	require.NoError(t, f.tranSvc.Close(ctx))
	assert.Len(t, seen, 0)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, units(25), f.balance(t))
}

func TestSlowMonitorDoesNotStallCommits(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	gate := make(chan struct{})
	f.tranSvc.AddMonitor(func(domain.Transaction) {
		<-gate
	})
	defer close(gate)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_, err := f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, units(1))
			assert.NoError(t, err)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("commits blocked by slow monitor")
	}
	assert.Equal(t, units(20), f.balance(t))
}

// allOnly 隱藏 ByAccount，只暴露 Repository 介面
type allOnly struct {
	usecase.TransactionsRepository
}

// blockingTransactions 指定帳戶的 Save 會停住直到 release
type blockingTransactions struct {
	*memory.TransactionStore
	mu      sync.Mutex
	blocked string
	entered chan struct{}
	gate    chan struct{}
}

func newBlockingTransactions() *blockingTransactions {
	return &blockingTransactions{
		TransactionStore: memory.NewTransactionStore(),
		entered:          make(chan struct{}, 1),
		gate:             make(chan struct{}),
	}
}

func (b *blockingTransactions) block(accountID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked = accountID
}

func (b *blockingTransactions) release() {
	close(b.gate)
}

func (b *blockingTransactions) Save(ctx context.Context, tran domain.Transaction) (domain.Transaction, error) {
	b.mu.Lock()
	blocked := b.blocked == tran.AccountID
	b.mu.Unlock()
	if blocked {
		select {
		case b.entered <- struct{}{}:
		default:
		}
		<-b.gate
	}
	return b.TransactionStore.Save(ctx, tran)
}

func TestBackdatedWithdrawalCannotOverdrawCurrentBalance(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.tranSvc.CreateTransaction(ctx, "2024-01-10 10:00", f.owner.ID, f.account.ID, units(100))
	require.NoError(t, err)
	_, err = f.tranSvc.CreateTransaction(ctx, "2024-01-10 12:00", f.owner.ID, f.account.ID, units(-100))
	require.NoError(t, err)

	// 11:00 時的餘額是 100，但 12:00 的提款已經用掉了
	_, err = f.tranSvc.CreateTransaction(ctx, "2024-01-10 11:00", f.owner.ID, f.account.ID, units(-100))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, domain.Amount(0), f.balance(t))

	atEleven, err := f.tranSvc.Sum(ctx, "2024-01-10 11:00", f.owner.ID, f.account.ID)
	require.NoError(t, err)
	assert.Equal(t, units(100), atEleven)
}

func TestWithdrawalBeforeLaterDepositIsRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.tranSvc.CreateTransaction(ctx, "2024-01-10 12:00", f.owner.ID, f.account.ID, units(100))
	require.NoError(t, err)

	// 目前餘額足夠，但 09:00 時帳戶還是空的
	_, err = f.tranSvc.CreateTransaction(ctx, "2024-01-10 09:00", f.owner.ID, f.account.ID, units(-50))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, units(100), f.balance(t))
}

func TestBalanceOverflowIsRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.deposit(t, domain.Amount(math.MaxInt64))

	_, err := f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, 1)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.NotErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, domain.Amount(math.MaxInt64), f.balance(t))

	_, err = f.tranSvc.CreateTransaction(ctx, t0, f.owner.ID, f.account.ID, -1)
	require.NoError(t, err)
}
