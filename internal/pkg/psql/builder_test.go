package psql

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectUsesDollarPlaceholders(t *testing.T) {
	sql, args, err := Select("id", "name").
		From("vendors").
		Where(squirrel.Eq{"category": "catering"}).
		Where(ILike("garden", "name", "description")).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM vendors WHERE category = $1 AND (name ILIKE $2 OR description ILIKE $3)", sql)
	assert.Equal(t, []interface{}{"catering", "%garden%", "%garden%"}, args)
}

func TestPage(t *testing.T) {
	sql, _, err := Page(Select("id").From("vendors"), 3, 10).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM vendors LIMIT 10 OFFSET 20", sql)

	sql, _, err = Page(Select("id").From("vendors"), 0, 0).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM vendors LIMIT 20 OFFSET 0", sql)
}
