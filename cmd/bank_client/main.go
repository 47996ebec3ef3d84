package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpc_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	grpcpool "github.com/JoeShih716/go-bank-ledger/pkg/grpc"
)

func main() {
	target := flag.String("target", "localhost:50051", "core server address")
	total := flag.Int("n", 100000, "number of transactions")
	concurrency := flag.Int("c", 200, "concurrent requests")
	flag.Parse()

	pool := grpcpool.NewPool()
	defer pool.Close()
	conn, err := pool.GetConnection(*target)
	if err != nil {
		log.Fatalf("connect %s: %v", *target, err)
	}
	c := grpc_adapter.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// 每次執行用新的身分證號與帳戶名稱，避免 AlreadyExists
	run := uuid.NewString()
	owner, err := c.CreateUser(ctx, "load-owner", run)
	if err != nil {
		log.Fatalf("create user: %v", err)
	}
	ownerID := owner.GetFields()["id"].GetStringValue()
	account, err := c.CreateAccount(ctx, ownerID, "load-"+run)
	if err != nil {
		log.Fatalf("create account: %v", err)
	}
	accountID := account.GetFields()["id"].GetStringValue()

	created := time.Now().Format(domain.TimestampLayout)
	// 先存入一半的量，讓扣款有一半會被拒絕
	if _, err := c.CreateTransaction(ctx, created, ownerID, accountID, fmt.Sprint(*total/2)); err != nil {
		log.Fatalf("seed deposit: %v", err)
	}

	var (
		wg       sync.WaitGroup
		ok       atomic.Int64
		rejected atomic.Int64
		failed   atomic.Int64
	)
	sem := make(chan struct{}, *concurrency)
	start := time.Now()
	for i := 0; i < *total; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := c.CreateTransaction(ctx, created, ownerID, accountID, "-1")
			switch {
			case err == nil:
				ok.Add(1)
			case status.Code(err) == codes.FailedPrecondition:
				rejected.Add(1)
			default:
				if failed.Add(1) == 1 {
					log.Printf("transaction %d failed: %v", idx, err)
				}
			}
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	balance, err := c.Sum(ctx, created, ownerID, accountID)
	if err != nil {
		log.Fatalf("sum: %v", err)
	}
	fmt.Printf("Completed %d requests in %v\n", *total, elapsed)
	fmt.Printf("TPS: %.2f\n", float64(*total)/elapsed.Seconds())
	fmt.Printf("committed=%d rejected=%d failed=%d balance=%s\n", ok.Load(), rejected.Load(), failed.Load(), balance)
}
