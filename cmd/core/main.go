package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/in/grpc"
	memory_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/keylock"
	"github.com/JoeShih716/go-bank-ledger/pkg/logger"
	"github.com/JoeShih716/go-bank-ledger/pkg/mysql"
)

type repositories struct {
	users        usecase.UsersRepository
	accounts     usecase.AccountsRepository
	transactions usecase.TransactionsRepository
	close        func() error
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. 載入設定
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. logger
	l, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	// 3. 儲存層
	repos, err := openRepositories(cfg, l)
	if err != nil {
		l.Fatal("open storage", zap.String("driver", string(cfg.Storage.Driver)), zap.Error(err))
	}
	defer func() {
		if err := repos.close(); err != nil {
			l.Warn("close storage", zap.Error(err))
		}
	}()
	l.Info("storage ready", zap.String("driver", string(cfg.Storage.Driver)))

	// 4. UseCase，三個 service 共用同一張鎖表
	locks := keylock.New()
	monitors := usecase.NewMonitors(cfg.Monitor, l)
	opts := []usecase.Option{
		usecase.WithLogger(l),
		usecase.WithKeyLock(locks),
		usecase.WithMonitors(monitors),
	}
	userSvc := usecase.NewUserService(repos.users, opts...)
	accountSvc := usecase.NewAccountService(repos.users, repos.accounts, opts...)
	tranSvc := usecase.NewTransactionService(repos.users, repos.accounts, repos.transactions, opts...)
	tranSvc.AddMonitor(func(t domain.Transaction) {
		l.Info("transaction committed",
			zap.String("transaction_id", t.EntityID()),
			zap.String("account_id", t.AccountID),
			zap.String("user_id", t.UserID),
			zap.Stringer("amount", t.Amount))
	})

	// 5. gRPC
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		l.Fatal("listen", zap.String("addr", cfg.GRPC.Addr), zap.Error(err))
	}
	s := grpc.NewServer(grpc.UnaryInterceptor(grpc_adapter.LoggingInterceptor(l)))
	grpc_adapter.RegisterBankingServiceServer(s, grpc_adapter.NewGrpcServer(userSvc, accountSvc, tranSvc, l))
	reflection.Register(s)

	go func() {
		l.Info("grpc server started", zap.String("addr", cfg.GRPC.Addr))
		if err := s.Serve(lis); err != nil {
			l.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("shutting down")

	s.GracefulStop()

	// 等 monitor 把已排隊的通知送完
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := monitors.Close(ctx); err != nil {
		l.Warn("monitors not drained", zap.Error(err))
	}
	l.Info("server exited")
}

func openRepositories(cfg Config, l *zap.Logger) (repositories, error) {
	switch cfg.Storage.Driver {
	case StorageMySQL:
		client, err := mysql.NewClient(cfg.MySQL, l)
		if err != nil {
			return repositories{}, err
		}
		if err := mysql_adapter.Migrate(client); err != nil {
			_ = client.Close()
			return repositories{}, err
		}
		return repositories{
			users:        mysql_adapter.NewUserRepository(client),
			accounts:     mysql_adapter.NewAccountRepository(client),
			transactions: mysql_adapter.NewTransactionRepository(client),
			close:        client.Close,
		}, nil
	default:
		return repositories{
			users:        memory_adapter.NewStore[domain.User](),
			accounts:     memory_adapter.NewStore[domain.Account](),
			transactions: memory_adapter.NewTransactionStore(),
			close:        func() error { return nil },
		}, nil
	}
}
