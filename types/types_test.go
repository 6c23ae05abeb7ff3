package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeIDJSON(t *testing.T) {
	id := SnowflakeID(1789012345678901234)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"1789012345678901234"`, string(data))

	var back SnowflakeID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back)

	require.NoError(t, json.Unmarshal([]byte(`42`), &back))
	assert.Equal(t, SnowflakeID(42), back)

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &back))
}

func TestSnowflakeIDScan(t *testing.T) {
	var id SnowflakeID
	require.NoError(t, id.Scan(int64(7)))
	assert.Equal(t, SnowflakeID(7), id)

	require.NoError(t, id.Scan([]byte("99")))
	assert.Equal(t, SnowflakeID(99), id)

	assert.Error(t, id.Scan(3.14))
}

func TestRoleList(t *testing.T) {
	roles := RoleList{"Staff", "admin", "staff", " "}
	assert.Equal(t, RoleList{"admin", "staff"}, roles.Normalize())

	value, err := roles.Value()
	require.NoError(t, err)
	assert.Equal(t, "admin,staff", value)

	var scanned RoleList
	require.NoError(t, scanned.Scan("admin,stock_manager"))
	assert.True(t, scanned.Has(RoleStockManager))
	assert.True(t, scanned.HasAny(RoleStaff, RoleAdmin))
	assert.False(t, scanned.HasAny(RoleStaff))

	assert.True(t, RoleList{"stock_manager"}.IsElevated())
	assert.False(t, RoleList{"staff"}.IsElevated())
	assert.Equal(t, []string{"root"}, RoleList{"root", "staff"}.Invalid())
}
