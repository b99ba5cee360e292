// Package psql holds the squirrel statement builder configured for PostgreSQL.
package psql

import (
	"github.com/Masterminds/squirrel"
)

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

func Insert(table string) squirrel.InsertBuilder {
	return builder.Insert(table)
}

func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

func Delete(table string) squirrel.DeleteBuilder {
	return builder.Delete(table)
}

// ILike matches value anywhere in any of columns, case-insensitively.
func ILike(value string, columns ...string) squirrel.Sqlizer {
	pattern := "%" + value + "%"
	or := squirrel.Or{}
	for _, c := range columns {
		or = append(or, squirrel.ILike{c: pattern})
	}
	return or
}

// Page applies LIMIT/OFFSET for a 1-based page.
func Page(q squirrel.SelectBuilder, page, limit int) squirrel.SelectBuilder {
	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	return q.Limit(uint64(limit)).Offset(uint64((page - 1) * limit))
}
