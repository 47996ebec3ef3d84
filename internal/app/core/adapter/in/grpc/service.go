package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// 服務名稱與方法路徑
// 訊息一律使用 google.protobuf.Struct，不需要額外的 .proto 產生碼
const (
	ServiceName = "banking.v1.BankingService"

	MethodCreateUser        = "/" + ServiceName + "/CreateUser"
	MethodCreateAccount     = "/" + ServiceName + "/CreateAccount"
	MethodAddUserToAccount  = "/" + ServiceName + "/AddUserToAccount"
	MethodCreateTransaction = "/" + ServiceName + "/CreateTransaction"
	MethodSum               = "/" + ServiceName + "/Sum"
)

// BankingServiceServer 伺服器端介面
type BankingServiceServer interface {
	CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AddUserToAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Sum(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// unaryMethod 將 BankingServiceServer 的一個方法包成 grpc.MethodHandler
func unaryMethod(fullMethod string, call func(BankingServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BankingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BankingServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BankingServiceDesc 手動註冊的 ServiceDesc
var BankingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BankingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateUser",
			Handler:    unaryMethod(MethodCreateUser, BankingServiceServer.CreateUser),
		},
		{
			MethodName: "CreateAccount",
			Handler:    unaryMethod(MethodCreateAccount, BankingServiceServer.CreateAccount),
		},
		{
			MethodName: "AddUserToAccount",
			Handler:    unaryMethod(MethodAddUserToAccount, BankingServiceServer.AddUserToAccount),
		},
		{
			MethodName: "CreateTransaction",
			Handler:    unaryMethod(MethodCreateTransaction, BankingServiceServer.CreateTransaction),
		},
		{
			MethodName: "Sum",
			Handler:    unaryMethod(MethodSum, BankingServiceServer.Sum),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "google/protobuf/struct.proto",
}

// RegisterBankingServiceServer 註冊到 grpc.Server
func RegisterBankingServiceServer(s grpc.ServiceRegistrar, srv BankingServiceServer) {
	s.RegisterService(&BankingServiceDesc, srv)
}
