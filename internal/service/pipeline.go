package service

import (
	"sort"

	"portfoliodash/internal/i18n"
	"portfoliodash/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// HPR is (market - cost) / cost * 100 rounded to two places. It is exactly
// zero whenever the ratio is undefined: missing values or a zero cost.
func HPR(cost, market decimal.NullDecimal) decimal.Decimal {
	if !cost.Valid || !market.Valid {
		return decimal.Zero
	}
	return ratio(cost.Decimal, market.Decimal)
}

func ratio(investment, current decimal.Decimal) decimal.Decimal {
	if investment.IsZero() {
		return decimal.Zero
	}
	return current.Sub(investment).Div(investment).Mul(hundred).Round(2)
}

func Enrich(holdings []models.Holding, store *i18n.Store, lang string) []models.EnrichedHolding {
	res := make([]models.EnrichedHolding, 0, len(holdings))
	for _, h := range holdings {
		res = append(res, models.EnrichedHolding{
			Holding:           h,
			MemberName:        store.MemberName(h.MemberCode, lang),
			StockName:         store.StockName(h.ISINCode, lang),
			SectorDisplayName: store.SectorName(h.SectorName, lang),
			HPR:               HPR(h.ValueAtCost, h.ValueAtMarket),
		})
	}
	return res
}

// Filter keeps rows matching every active dimension of sel. Member and sector
// compare against the localized display names.
func Filter(rows []models.EnrichedHolding, sel models.FilterSelection) []models.EnrichedHolding {
	res := []models.EnrichedHolding{}
	for _, r := range rows {
		if models.Active(sel.Portfolio) && r.Portfolio != sel.Portfolio {
			continue
		}
		if models.Active(sel.Member) && r.MemberName != sel.Member {
			continue
		}
		if models.Active(sel.Sector) && r.SectorDisplayName != sel.Sector {
			continue
		}
		if models.Active(sel.Broker) && r.Broker != sel.Broker {
			continue
		}
		res = append(res, r)
	}
	return res
}

type FilterOptions struct {
	Portfolios []string `json:"portfolios"`
	Members    []string `json:"members"`
	Sectors    []string `json:"sectors"`
	Brokers    []string `json:"brokers"`
}

// Options lists All followed by the distinct values of each filter dimension
// in first-seen order.
func Options(rows []models.EnrichedHolding) FilterOptions {
	return FilterOptions{
		Portfolios: distinct(rows, func(r models.EnrichedHolding) string { return r.Portfolio }),
		Members:    distinct(rows, func(r models.EnrichedHolding) string { return r.MemberName }),
		Sectors:    distinct(rows, func(r models.EnrichedHolding) string { return r.SectorDisplayName }),
		Brokers:    distinct(rows, func(r models.EnrichedHolding) string { return r.Broker }),
	}
}

func distinct(rows []models.EnrichedHolding, field func(models.EnrichedHolding) string) []string {
	seen := map[string]bool{}
	res := []string{models.All}
	for _, r := range rows {
		v := field(r)
		if seen[v] {
			continue
		}
		seen[v] = true
		res = append(res, v)
	}
	return res
}

// Aggregate sums cost and market value per group. Group HPR is recomputed
// from the sums, not averaged from row HPRs. Rows are ordered by key.
func Aggregate(rows []models.EnrichedHolding, dim models.Dimension) []models.AggregateRow {
	groups := map[string]*models.AggregateRow{}
	for _, r := range rows {
		k := dim.Key(r)
		g, ok := groups[k]
		if !ok {
			g = &models.AggregateRow{Key: k}
			groups[k] = g
		}
		g.Investment = g.Investment.Add(r.Cost())
		g.CurrentValue = g.CurrentValue.Add(r.Market())
	}
	res := make([]models.AggregateRow, 0, len(groups))
	for _, g := range groups {
		g.HPR = ratio(g.Investment, g.CurrentValue)
		res = append(res, *g)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	return res
}

func Totals(rows []models.EnrichedHolding) models.Total {
	var t models.Total
	for _, r := range rows {
		t.Investment = t.Investment.Add(r.Cost())
		t.CurrentValue = t.CurrentValue.Add(r.Market())
	}
	t.HPR = ratio(t.Investment, t.CurrentValue)
	return t
}

// Allocate returns the investment held in each group of dim, the series
// behind the allocation pie chart.
func Allocate(rows []models.EnrichedHolding, dim models.Dimension) []models.AllocationSlice {
	agg := Aggregate(rows, dim)
	res := make([]models.AllocationSlice, 0, len(agg))
	for _, a := range agg {
		res = append(res, models.AllocationSlice{Label: a.Key, Value: a.Investment})
	}
	return res
}
