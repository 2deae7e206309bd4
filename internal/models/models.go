package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// All is the selection value that disables a filter dimension.
const All = "All"

type Holding struct {
	MemberCode    string              `db:"member_code" json:"member_code"`
	ISINCode      string              `db:"isin_code" json:"isin_code"`
	SectorName    string              `db:"sector_name" json:"sector_name"`
	Broker        string              `db:"broker" json:"broker"`
	Portfolio     string              `db:"portfolio" json:"portfolio"`
	Quantity      decimal.NullDecimal `db:"qty" json:"qty"`
	ValueAtCost   decimal.NullDecimal `db:"value_at_cost" json:"value_at_cost"`
	ValueAtMarket decimal.NullDecimal `db:"value_at_market" json:"value_at_market"`
}

type EnrichedHolding struct {
	Holding
	MemberName        string          `json:"member_name"`
	StockName         string          `json:"stock_name"`
	SectorDisplayName string          `json:"sector_display_name"`
	HPR               decimal.Decimal `json:"hpr"`
}

// Cost returns the value at cost, zero when missing.
func (h EnrichedHolding) Cost() decimal.Decimal {
	if !h.ValueAtCost.Valid {
		return decimal.Zero
	}
	return h.ValueAtCost.Decimal
}

// Market returns the value at market price, zero when missing.
func (h EnrichedHolding) Market() decimal.Decimal {
	if !h.ValueAtMarket.Valid {
		return decimal.Zero
	}
	return h.ValueAtMarket.Decimal
}

type AggregateRow struct {
	Key          string          `json:"key"`
	Investment   decimal.Decimal `json:"investment"`
	CurrentValue decimal.Decimal `json:"current_value"`
	HPR          decimal.Decimal `json:"hpr"`
}

type Total struct {
	Investment   decimal.Decimal `json:"investment"`
	CurrentValue decimal.Decimal `json:"current_value"`
	HPR          decimal.Decimal `json:"hpr"`
}

type AllocationSlice struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// FilterSelection holds one choice per filter dimension. An empty value or
// All leaves the dimension unfiltered.
type FilterSelection struct {
	Portfolio string `form:"portfolio" json:"portfolio"`
	Member    string `form:"member" json:"member"`
	Sector    string `form:"sector" json:"sector"`
	Broker    string `form:"broker" json:"broker"`
}

func Active(v string) bool {
	return v != "" && v != All
}

type Dimension int

const (
	DimensionMember Dimension = iota
	DimensionSector
	DimensionBroker
)

var Dimensions = []Dimension{DimensionMember, DimensionSector, DimensionBroker}

// ParseDimension resolves a caller-supplied grouping name. An empty string
// selects DimensionMember, which is the initial grouping of the dashboard.
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "member":
		return DimensionMember, nil
	case "sector":
		return DimensionSector, nil
	case "broker":
		return DimensionBroker, nil
	}
	return DimensionMember, fmt.Errorf("unknown dimension %q", s)
}

// Title is the titles key naming the dimension.
func (d Dimension) Title() string {
	switch d {
	case DimensionSector:
		return "Sector"
	case DimensionBroker:
		return "Broker"
	default:
		return "Member"
	}
}

func (d Dimension) String() string {
	return strings.ToLower(d.Title())
}

// Key returns the grouping value of h along d.
func (d Dimension) Key(h EnrichedHolding) string {
	switch d {
	case DimensionSector:
		return h.SectorDisplayName
	case DimensionBroker:
		return h.Broker
	default:
		return h.MemberName
	}
}

func (d Dimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Dimension) UnmarshalText(b []byte) error {
	v, err := ParseDimension(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
