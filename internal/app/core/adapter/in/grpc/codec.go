package grpc

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// field 取出字串欄位，不存在或非字串時回傳空字串
func field(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func amountField(s *structpb.Struct, key string) (domain.Amount, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, domain.ErrInvalidAmount
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return domain.ParseAmount(kind.StringValue)
	case *structpb.Value_NumberValue:
		return domain.AmountFromFloat(kind.NumberValue)
	default:
		return 0, domain.ErrInvalidAmount
	}
}

func userToStruct(u domain.User) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":          u.ID,
		"name":        u.Name,
		"personal_id": u.PersonalIdentificationNumber,
		"active":      u.Active,
	})
}

func accountToStruct(a domain.Account) (*structpb.Struct, error) {
	members := make([]any, 0, len(a.Members))
	for _, m := range a.Members {
		members = append(members, m)
	}
	return structpb.NewStruct(map[string]any{
		"id":       a.ID,
		"owner_id": a.OwnerID,
		"name":     a.Name,
		"active":   a.Active,
		"members":  members,
	})
}

func transactionToStruct(t domain.Transaction) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":         t.EntityID(),
		"created":    t.Created.Format(domain.TimestampLayout),
		"user_id":    t.UserID,
		"account_id": t.AccountID,
		"amount":     t.Amount.String(),
	})
}
