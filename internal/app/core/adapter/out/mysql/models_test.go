package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/domain"
)

func TestUserRowMapping(t *testing.T) {
	u := domain.NewUser("Arne", "19800101-1234").Deactivated()
	row := toSQLUser(u)
	assert.Equal(t, "19800101-1234", row.PersonalID)
	assert.Equal(t, u, row.toDomain())
}

func TestAccountRowMapping(t *testing.T) {
	acc := domain.NewAccount("owner", "savings").WithMember("bob").WithMember("carol")
	row, members := toSQLAccount(acc)

	require.Len(t, members, 2)
	assert.Equal(t, acc.ID, members[1].AccountID)
	assert.Equal(t, "carol", members[1].UserID)
	assert.Equal(t, 1, members[1].Position)
	assert.Equal(t, acc, row.toDomain(members))

	empty, none := toSQLAccount(domain.NewAccount("owner", "empty"))
	assert.Empty(t, none)
	assert.Nil(t, empty.toDomain(none).Members)
}

func TestJoinMembers(t *testing.T) {
	a := domain.NewAccount("o", "a").WithMember("x")
	b := domain.NewAccount("o", "b").WithMember("y").WithMember("z")
	rowA, mA := toSQLAccount(a)
	rowB, mB := toSQLAccount(b)

	got := joinMembers([]sqlAccount{rowA, rowB}, append(mA, mB...))
	require.Len(t, got, 2)
	assert.Equal(t, []string{"x"}, got[0].Members)
	assert.Equal(t, []string{"y", "z"}, got[1].Members)
}

func TestTransactionRowMapping(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	tran := domain.NewTransaction(created, "u", "a", -1500)
	row := toSQLTransaction(tran)
	assert.Len(t, row.RefID, 16)
	assert.Equal(t, int64(-1500), row.Amount)

	back, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, tran.ID, back.ID)
	assert.True(t, tran.Created.Equal(back.Created))
	assert.Equal(t, tran.Amount, back.Amount)

	row.RefID = []byte{1, 2, 3}
	_, err = row.toDomain()
	assert.Error(t, err)
}
