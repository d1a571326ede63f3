package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectCols = `SELECT id, title, price, description, contact_phone, contact_email, contact_name, location, category, created_at FROM gigs WHERE `

func TestMySQLFind(t *testing.T) {
	tests := []struct {
		name  string
		q     FindQuery
		query string
		args  []any
	}{
		{
			name:  "unfiltered page",
			q:     FindQuery{Skip: 3, Limit: 2},
			query: selectCols + "1=1 ORDER BY seq ASC LIMIT ? OFFSET ?",
			args:  []any{int64(2), int64(3)},
		},
		{
			name:  "filters are sorted by column",
			q:     FindQuery{Limit: 5}.Where(FieldLocation, "Austin").Where(FieldCategory, "plumbing"),
			query: selectCols + "category = ? AND location = ? ORDER BY seq ASC LIMIT ? OFFSET ?",
			args:  []any{"plumbing", "Austin", int64(5), int64(0)},
		},
		{
			name:  "newest first without limit",
			q:     FindQuery{NewestFirst: true},
			query: selectCols + "1=1 ORDER BY created_at DESC, seq DESC",
			args:  []any{},
		},
		{
			name:  "offset without limit",
			q:     FindQuery{Skip: 4},
			query: selectCols + "1=1 ORDER BY seq ASC LIMIT 18446744073709551615 OFFSET ?",
			args:  []any{int64(4)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := mysqlFind(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.query, query)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestMySQLFind_RejectsUnknownField(t *testing.T) {
	_, _, err := mysqlFind(FindQuery{}.Where("title; DROP TABLE gigs", "x"))
	assert.ErrorIs(t, err, ErrUnknownField)
}
