package database

import (
	"context"
	"database/sql"
	"time"

	"portfoliodash/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const holdingsTable = "portfolio_holdings"

var holdingColumns = []string{
	"member_code", "isin_code", "sector_name", "broker",
	"portfolio", "qty", "value_at_cost", "value_at_market",
}

type Repo struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func New(db *sqlx.DB, log *logrus.Logger) *Repo {
	return &Repo{db: db, log: log}
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

// GetHoldings reads every exported holding in load order. Numeric text that
// does not parse becomes a missing value, as with CSV input.
func (r *Repo) GetHoldings(ctx context.Context) ([]models.Holding, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT member_code, isin_code, sector_name, broker, portfolio, qty, value_at_cost, value_at_market FROM portfolio_holdings ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []models.Holding{}
	for rows.Next() {
		var h holdingRow
		if err := rows.StructScan(&h); err != nil {
			r.log.Warnf("scan holding failed: %v", err)
			continue
		}
		res = append(res, models.Holding{
			MemberCode:    h.MemberCode.String,
			ISINCode:      h.ISINCode.String,
			SectorName:    h.SectorName.String,
			Broker:        h.Broker.String,
			Portfolio:     h.Portfolio.String,
			Quantity:      models.ParseAmount(h.Qty.String),
			ValueAtCost:   models.ParseAmount(h.ValueAtCost.String),
			ValueAtMarket: models.ParseAmount(h.ValueAtMarket.String),
		})
	}
	return res, rows.Err()
}

// ReplaceHoldings swaps the table contents for rows in one transaction.
func (r *Repo) ReplaceHoldings(ctx context.Context, rows []models.Holding) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM portfolio_holdings`); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(holdingsTable, holdingColumns...))
	if err != nil {
		return 0, err
	}
	for _, h := range rows {
		if _, err := stmt.ExecContext(ctx, h.MemberCode, h.ISINCode, h.SectorName, h.Broker, h.Portfolio,
			text(h.Quantity), text(h.ValueAtCost), text(h.ValueAtMarket)); err != nil {
			stmt.Close()
			return 0, err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, err
	}
	if err := stmt.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	r.log.Infof("replaced %s with %d rows", holdingsTable, len(rows))
	return len(rows), nil
}

func text(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}
