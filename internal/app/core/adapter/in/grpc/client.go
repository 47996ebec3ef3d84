package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client BankingService 的客戶端
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) CreateUser(ctx context.Context, name, personalID string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCreateUser, map[string]any{
		"name":        name,
		"personal_id": personalID,
	})
}

func (c *Client) CreateAccount(ctx context.Context, userID, name string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCreateAccount, map[string]any{
		"user_id": userID,
		"name":    name,
	})
}

func (c *Client) AddUserToAccount(ctx context.Context, userID, accountID, assignedUserID string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodAddUserToAccount, map[string]any{
		"user_id":          userID,
		"account_id":       accountID,
		"assigned_user_id": assignedUserID,
	})
}

// CreateTransaction amount 用十進位字串傳送避免浮點誤差
func (c *Client) CreateTransaction(ctx context.Context, created, userID, accountID, amount string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCreateTransaction, map[string]any{
		"created":    created,
		"user_id":    userID,
		"account_id": accountID,
		"amount":     amount,
	})
}

// Sum 回傳餘額字串
func (c *Client) Sum(ctx context.Context, created, userID, accountID string) (string, error) {
	out, err := c.invoke(ctx, MethodSum, map[string]any{
		"created":    created,
		"user_id":    userID,
		"account_id": accountID,
	})
	if err != nil {
		return "", err
	}
	return out.GetFields()["balance"].GetStringValue(), nil
}

func (c *Client) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}
