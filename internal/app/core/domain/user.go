package domain

import "github.com/google/uuid"

// User 使用者
//
// 值型別：所有變更都回傳新的 User，原值不動，
// 由 repository 負責保存最新版本
type User struct {
	ID                           string
	Name                         string
	PersonalIdentificationNumber string
	Active                       bool
}

// NewUser 建立一個啟用中的使用者，ID 為隨機 UUID
func NewUser(name, personalIdentificationNumber string) User {
	return User{
		ID:                           uuid.NewString(),
		Name:                         name,
		PersonalIdentificationNumber: personalIdentificationNumber,
		Active:                       true,
	}
}

func (u User) EntityID() string {
	return u.ID
}

func (u User) WithName(name string) User {
	u.Name = name
	return u
}

func (u User) WithPersonalID(personalIdentificationNumber string) User {
	u.PersonalIdentificationNumber = personalIdentificationNumber
	return u
}

// Deactivated 停用 (不提供重新啟用)
func (u User) Deactivated() User {
	u.Active = false
	return u
}
