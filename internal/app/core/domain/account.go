package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Account 帳戶
//
// 結構:
//
//	OwnerID: 建立者，建立後不可變更
//	Members: 被授權的其他使用者 (永遠不包含 owner)
//
// 和 User 一樣是值型別，With* 方法一律配置新的 Members slice，
// 不會與其他讀取者共用底層陣列
type Account struct {
	ID      string
	OwnerID string
	Name    string
	Active  bool
	Members []string
}

// NewAccount 建立一個啟用中的帳戶
func NewAccount(ownerID, name string) Account {
	return Account{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
		Active:  true,
	}
}

func (a Account) EntityID() string {
	return a.ID
}

// Clone 深拷貝 Members
func (a Account) Clone() Account {
	a.Members = slices.Clone(a.Members)
	return a
}

func (a Account) IsOwner(userID string) bool {
	return a.OwnerID == userID
}

func (a Account) IsMember(userID string) bool {
	return slices.Contains(a.Members, userID)
}

// CanAct owner 或 member 才能對帳戶操作
func (a Account) CanAct(userID string) bool {
	return a.IsOwner(userID) || a.IsMember(userID)
}

func (a Account) WithName(name string) Account {
	a = a.Clone()
	a.Name = name
	return a
}

func (a Account) WithMember(userID string) Account {
	a = a.Clone()
	a.Members = append(a.Members, userID)
	return a
}

func (a Account) WithoutMember(userID string) Account {
	members := make([]string, 0, len(a.Members))
	for _, id := range a.Members {
		if id != userID {
			members = append(members, id)
		}
	}
	a.Members = members
	return a
}

// Deactivated 停用帳戶，單向操作
func (a Account) Deactivated() Account {
	a = a.Clone()
	a.Active = false
	return a
}
