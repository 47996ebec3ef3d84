package usecase

import (
	"go.uber.org/zap"

	"github.com/JoeShih716/go-bank-ledger/pkg/keylock"
	"github.com/JoeShih716/go-bank-ledger/pkg/logger"
)

// Option 定義 service 的配置選項函數
type Option func(*options)

type options struct {
	logger   *zap.Logger
	locks    *keylock.KeyLock
	monitors *Monitors
}

// WithLogger 設定 logger，預設不輸出
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithKeyLock 共用同一張鎖表
// TransactionService 與 AccountService 共用時，停用帳戶與交易會互相序列化
func WithKeyLock(locks *keylock.KeyLock) Option {
	return func(o *options) {
		o.locks = locks
	}
}

// WithMonitors 指定 observer dispatcher (只有 TransactionService 使用)
func WithMonitors(m *Monitors) Option {
	return func(o *options) {
		o.monitors = m
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logger.OrNop(o.logger)
	if o.locks == nil {
		o.locks = keylock.New()
	}
	return o
}

func accountKey(id string) string {
	return "account:" + id
}

func userKey(id string) string {
	return "user:" + id
}
