// Package keylock 提供以字串為 key 的互斥鎖表。
//
// 同一個 key 同時間只有一個持有者；不同 key 互不影響。
// 每個 key 的鎖在最後一個等待者釋放後就會從表中移除，
// 所以表的大小只跟「正在使用中的 key」有關。
package keylock

import (
	"context"
	"sync"
)

// entry 一個 key 的鎖
// ch 容量為 1：放得進去代表取得鎖
type entry struct {
	ch   chan struct{}
	refs int
}

// KeyLock 依 key 分開的互斥鎖
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New 建立一個空的 KeyLock
func New() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*entry),
	}
}

// Lock 取得 key 的鎖 (阻塞直到取得)
//
// 回傳:
//
//	func(): 釋放函式，可重複呼叫
func (k *KeyLock) Lock(key string) func() {
	unlock, _ := k.LockContext(context.Background(), key)
	return unlock
}

// LockContext 取得 key 的鎖，ctx 取消時放棄等待
//
// 參數:
//
//	ctx: 上下文
//	key: 鎖的 key (例如 account ID)
//
// 回傳:
//
//	func(): 釋放函式，可重複呼叫
//	error: ctx 的錯誤；此時沒有取得鎖，也不會在表中留下任何東西
func (k *KeyLock) LockContext(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := k.acquire(key)
	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				k.release(key, e)
			})
		}, nil
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}
}

// Len 目前仍被持有或等待中的 key 數量
func (k *KeyLock) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func (k *KeyLock) acquire(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *KeyLock) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}
