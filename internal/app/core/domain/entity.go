package domain

// Entity 可以被 repository 依 ID 保存的實體
type Entity interface {
	EntityID() string
}

var (
	_ Entity = User{}
	_ Entity = Account{}
	_ Entity = Transaction{}
)
