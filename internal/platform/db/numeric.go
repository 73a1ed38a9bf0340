package db

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// NumericFromDecimal converts a decimal amount into a pgtype.Numeric parameter.
func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		// d.String always yields a plain decimal literal, so Scan cannot fail;
		// return the invalid zero value rather than panic if it ever does.
		return pgtype.Numeric{}
	}
	return n
}

// DecimalFromNumeric converts a scanned NUMERIC column into a decimal amount.
// Invalid (NULL) numerics convert to zero.
func DecimalFromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	value, err := n.Value()
	if err != nil {
		return decimal.Zero, fmt.Errorf("platform/db: numeric value: %w", err)
	}
	text, ok := value.(string)
	if !ok {
		return decimal.Zero, fmt.Errorf("platform/db: numeric value is %T, want string", value)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("platform/db: parse numeric: %w", err)
	}
	return d, nil
}
