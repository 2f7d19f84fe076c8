package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableName(t *testing.T) {
	name, err := tableName("fincatec")
	require.NoError(t, err)
	assert.Equal(t, "kv_fincatec", name)

	name, err = tableName("")
	require.NoError(t, err)
	assert.Equal(t, "kv_store", name)
}

func TestTableName_RejectsUnsafeNamespace(t *testing.T) {
	for _, ns := range []string{"Finca", "finca-tec", "x; DROP TABLE users", "1abc"} {
		_, err := tableName(ns)
		assert.Error(t, err, ns)
	}
}

func TestNewKVStore_UsesNamespacedTable(t *testing.T) {
	s, err := NewKVStore(nil, "finca_dev")
	require.NoError(t, err)
	assert.Equal(t, "kv_finca_dev", s.table)
}
