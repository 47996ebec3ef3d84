package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/logger"
)

type GrpcServer struct {
	users        *usecase.UserService
	accounts     *usecase.AccountService
	transactions *usecase.TransactionService
	logger       *zap.Logger
}

func NewGrpcServer(users *usecase.UserService, accounts *usecase.AccountService, transactions *usecase.TransactionService, l *zap.Logger) *GrpcServer {
	return &GrpcServer{
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		logger:       logger.OrNop(l),
	}
}

// CreateUser {name, personal_id} -> user
func (s *GrpcServer) CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.users.CreateUser(ctx, field(req, "name"), field(req, "personal_id"))
	if err != nil {
		return nil, s.toStatus(methodName(ctx), err)
	}
	return userToStruct(user)
}

// CreateAccount {user_id, name} -> account
func (s *GrpcServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := s.accounts.CreateAccount(ctx, field(req, "user_id"), field(req, "name"))
	if err != nil {
		return nil, s.toStatus(methodName(ctx), err)
	}
	return accountToStruct(account)
}

// AddUserToAccount {user_id, account_id, assigned_user_id} -> account
func (s *GrpcServer) AddUserToAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := s.accounts.AddUserToAccount(ctx, field(req, "user_id"), field(req, "account_id"), field(req, "assigned_user_id"))
	if err != nil {
		return nil, s.toStatus(methodName(ctx), err)
	}
	return accountToStruct(account)
}

// CreateTransaction {created, user_id, account_id, amount} -> transaction
//
// amount 可以是字串 ("-150.25") 或數字
func (s *GrpcServer) CreateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	amount, err := amountField(req, "amount")
	if err != nil {
		return nil, s.toStatus(methodName(ctx), err)
	}
	tran, err := s.transactions.CreateTransaction(ctx, field(req, "created"), field(req, "user_id"), field(req, "account_id"), amount)
	if err != nil {
		return nil, s.toStatus(methodName(ctx), err)
	}
	return transactionToStruct(tran)
}

// Sum {created, user_id, account_id} -> {balance}
func (s *GrpcServer) Sum(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	balance, err := s.transactions.Sum(ctx, field(req, "created"), field(req, "user_id"), field(req, "account_id"))
	if err != nil {
		return nil, s.toStatus(methodName(ctx), err)
	}
	return structpb.NewStruct(map[string]any{
		"balance": balance.String(),
	})
}

// toStatus 轉成 gRPC status；無法分類的錯誤 (通常是儲存層) 記錄後回傳 Internal
func (s *GrpcServer) toStatus(method string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error("grpc internal error", zap.String("method", method), zap.Error(err))
	}
	return st
}

// methodName 取出目前呼叫的方法名稱
func methodName(ctx context.Context) string {
	method, _ := grpc.Method(ctx)
	return method
}

// toStatus 依 domain.Kind 轉成 gRPC status，其餘為 Internal
func toStatus(err error) error {
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case domain.KindNotActive, domain.KindInsufficientFunds:
		return status.Error(codes.FailedPrecondition, err.Error())
	case domain.KindNotAllowed:
		return status.Error(codes.PermissionDenied, err.Error())
	case domain.KindNotUnique:
		return status.Error(codes.AlreadyExists, err.Error())
	case domain.KindInvalidInput:
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

var _ BankingServiceServer = (*GrpcServer)(nil)
