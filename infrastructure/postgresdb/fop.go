package postgresdb

import (
	"bytes"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Set of directions for data ordering.
const (
	ASC  = "ASC"
	DESC = "DESC"
)

// AddOrderByClause adds an ORDER BY clause to the query buffer. The primary key
// is appended as a tie-break so page boundaries are stable.
func AddOrderByClause(buf *bytes.Buffer, orderField, pkField, direction string) error {
	quotedOrderField, err := QuoteIdentifier(orderField)
	if err != nil {
		return fmt.Errorf("invalid order field name: %w", err)
	}
	quotedPKField, err := QuoteIdentifier(pkField)
	if err != nil {
		return fmt.Errorf("invalid pk field name: %w", err)
	}

	switch direction {
	case ASC, DESC:
	default:
		return fmt.Errorf("invalid direction: %s", direction)
	}

	fmt.Fprintf(buf, " ORDER BY %s %s", quotedOrderField, direction)
	if orderField != pkField {
		fmt.Fprintf(buf, ", %s %s", quotedPKField, direction)
	}

	return nil
}

// AddLimitClause adds LIMIT clause to the query buffer
func AddLimitClause(limit int, data pgx.NamedArgs, buf *bytes.Buffer) {
	buf.WriteString(" LIMIT @limit")
	data["limit"] = limit
}

// AddOffsetClause adds OFFSET clause to the query buffer. A zero offset is a
// no-op.
func AddOffsetClause(offset int, data pgx.NamedArgs, buf *bytes.Buffer) {
	if offset <= 0 {
		return
	}
	buf.WriteString(" OFFSET @offset")
	data["offset"] = offset
}

// AddWhere appends a condition, opening the WHERE clause on first use.
func AddWhere(buf *bytes.Buffer, hasWhere *bool, condition string) {
	if *hasWhere {
		buf.WriteString(" AND ")
	} else {
		buf.WriteString(" WHERE ")
		*hasWhere = true
	}
	buf.WriteString(condition)
}
