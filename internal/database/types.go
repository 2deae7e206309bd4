package database

import "database/sql"

// holdingRow mirrors portfolio_holdings. Numeric columns are stored as text
// exactly as exported so they go through the same coercion as CSV cells.
type holdingRow struct {
	MemberCode    sql.NullString `db:"member_code"`
	ISINCode      sql.NullString `db:"isin_code"`
	SectorName    sql.NullString `db:"sector_name"`
	Broker        sql.NullString `db:"broker"`
	Portfolio     sql.NullString `db:"portfolio"`
	Qty           sql.NullString `db:"qty"`
	ValueAtCost   sql.NullString `db:"value_at_cost"`
	ValueAtMarket sql.NullString `db:"value_at_market"`
}
