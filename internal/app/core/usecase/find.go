package usecase

import (
	"cmp"
	"slices"
	"strings"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

// Page 分頁，Number 從 0 開始
type Page struct {
	Number int
	Size   int
}

// UserSortOrder 使用者查詢排序
type UserSortOrder uint8

const (
	UserSortNone UserSortOrder = iota
	UserSortName
	UserSortPersonalID
)

// AccountSortOrder 帳戶查詢排序
type AccountSortOrder uint8

const (
	AccountSortNone AccountSortOrder = iota
	AccountSortName
)

// applyPage 取出第 page.Number 頁；page 為 nil 或 Size <= 0 時回傳全部
func applyPage[T any](items []T, page *Page) []T {
	if page == nil || page.Size <= 0 {
		return items
	}
	start := page.Number * page.Size
	if page.Number < 0 || start >= len(items) {
		return []T{}
	}
	end := min(start+page.Size, len(items))
	return items[start:end]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func sortUsers(users []domain.User, order UserSortOrder) error {
	switch order {
	case UserSortNone:
	case UserSortName:
		slices.SortStableFunc(users, func(a, b domain.User) int {
			return cmp.Compare(a.Name, b.Name)
		})
	case UserSortPersonalID:
		slices.SortStableFunc(users, func(a, b domain.User) int {
			return cmp.Compare(a.PersonalIdentificationNumber, b.PersonalIdentificationNumber)
		})
	default:
		return domain.ErrInvalidSortOrder
	}
	return nil
}
