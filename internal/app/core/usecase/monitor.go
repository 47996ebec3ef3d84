package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/pkg/logger"
)

const (
	DefaultMonitorWorkers   = 4
	DefaultMonitorQueueSize = 1024
)

// Monitor 交易成功寫入後被通知的 callback
type Monitor func(tran domain.Transaction)

// MonitorConfig dispatcher 設定
type MonitorConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// monitorEvent 一筆交易 + 發布當下已註冊的 monitors
type monitorEvent struct {
	tran     domain.Transaction
	monitors []Monitor
}

// Monitors observer 註冊表與非同步 dispatcher
//
// 結構:
//
//	monitors: 已註冊的 callback
//	queue: 輸送帶，worker 從這裡取出事件
//	closed: Close 之後不再接收事件
//
// Publish -> queue -> worker -> 每個 monitor (recover)
type Monitors struct {
	mu       sync.RWMutex
	monitors []Monitor
	closed   bool

	queue  chan monitorEvent
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewMonitors 建立 dispatcher 並啟動 worker
//
// 參數:
//
//	cfg: worker 數與 queue 容量，0 使用預設值
//	l: logger，可為 nil
//
// 回傳:
//
//	*Monitors: dispatcher 實例，用完需呼叫 Close
func NewMonitors(cfg MonitorConfig, l *zap.Logger) *Monitors {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultMonitorWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultMonitorQueueSize
	}

	m := &Monitors{
		queue:  make(chan monitorEvent, cfg.QueueSize),
		logger: logger.OrNop(l),
	}
	m.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go m.run()
	}
	return m
}

// Add 註冊 monitor，之後發布的交易都會通知它
func (m *Monitors) Add(monitor Monitor) {
	if monitor == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monitors = append(m.monitors, monitor)
}

// Publish 非同步通知所有已註冊的 monitor，不會阻塞呼叫端
//
// queue 滿了就另開 goroutine 投遞，確保事件最終一定送達；
// Close 之後發布的事件會被丟棄
func (m *Monitors) Publish(tran domain.Transaction) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.monitors) == 0 {
		return
	}
	if m.closed {
		m.logger.Warn("monitors closed, dropping transaction event",
			zap.String("transaction_id", tran.EntityID()))
		return
	}

	ev := monitorEvent{tran: tran, monitors: slices.Clone(m.monitors)}
	select {
	case m.queue <- ev:
	default:
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.deliver(ev)
		}()
	}
}

// Close 停止接收新事件，並等待 queue 中剩下的事件處理完
//
// 回傳:
//
//	error: ctx 先結束時回傳 ctx.Err()，剩下的事件仍會在背景處理
func (m *Monitors) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run worker 迴圈；queue 關閉後把剩下的事件處理完才結束
func (m *Monitors) run() {
	defer m.wg.Done()
	for ev := range m.queue {
		m.deliver(ev)
	}
}

func (m *Monitors) deliver(ev monitorEvent) {
	for _, monitor := range ev.monitors {
		m.call(monitor, ev.tran)
	}
}

// call 單一 monitor 的 panic 不影響其他 monitor 與帳本
func (m *Monitors) call(monitor Monitor, tran domain.Transaction) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("monitor panicked",
				zap.String("transaction_id", tran.EntityID()),
				zap.String("account_id", tran.AccountID),
				zap.Error(fmt.Errorf("%v", r)))
		}
	}()
	monitor(tran)
}
