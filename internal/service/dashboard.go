package service

import (
	"context"
	"errors"
	"fmt"

	"portfoliodash/internal/format"
	"portfoliodash/internal/i18n"
	"portfoliodash/internal/loader"
	"portfoliodash/internal/models"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyResult = errors.New("no data for the selected filters")
	ErrLoadFailed  = errors.New("portfolio source could not be read")
)

type Condition string

const (
	ConditionOK            Condition = "ok"
	ConditionMissingSource Condition = "missing_source"
	ConditionLoadFailed    Condition = "load_failed"
	ConditionEmptyResult   Condition = "empty_result"
)

// Diagnostic messages, also used as titles keys.
const (
	MsgMissingSource = "Please upload a portfolio CSV file."
	MsgLoadFailed    = "The portfolio file could not be read."
	MsgEmptyResult   = "No data available for the selected filters."
)

type Request struct {
	Source     Source
	Lang       string
	Selection  models.FilterSelection
	GroupBy    models.Dimension
	AllocateBy models.Dimension
}

type Labels struct {
	Title            string `json:"title"`
	Investment       string `json:"investment"`
	CurrentValue     string `json:"current_value"`
	HPR              string `json:"hpr"`
	SummaryTable     string `json:"summary_table"`
	SummarizeBy      string `json:"summarize_by"`
	GroupBy          string `json:"group_by"`
	Allocation       string `json:"allocation"`
	AllocationBy     string `json:"allocation_by"`
	AllocationTitle  string `json:"allocation_title"`
	DetailedHoldings string `json:"detailed_holdings"`
	Portfolio        string `json:"portfolio"`
	Member           string `json:"member"`
	Sector           string `json:"sector"`
	Broker           string `json:"broker"`
	StockName        string `json:"stock_name"`
	Quantity         string `json:"quantity"`
}

type Summary struct {
	Investment   string       `json:"investment"`
	CurrentValue string       `json:"current_value"`
	HPR          string       `json:"hpr"`
	Raw          models.Total `json:"raw"`
}

type TableRow struct {
	Key          string `json:"key"`
	Investment   string `json:"investment"`
	CurrentValue string `json:"current_value"`
	HPR          string `json:"hpr"`
	Highlight    bool   `json:"highlight"`
}

type DetailRow struct {
	Member       string `json:"member"`
	Broker       string `json:"broker"`
	Sector       string `json:"sector"`
	Stock        string `json:"stock"`
	Quantity     string `json:"quantity"`
	Investment   string `json:"investment"`
	CurrentValue string `json:"current_value"`
	HPR          string `json:"hpr"`
	Highlight    bool   `json:"highlight"`
}

type Report struct {
	Lang       string                   `json:"lang"`
	SourceID   string                   `json:"source_id,omitempty"`
	Condition  Condition                `json:"condition"`
	Message    string                   `json:"message,omitempty"`
	Labels     Labels                   `json:"labels"`
	Selection  models.FilterSelection   `json:"selection"`
	Options    FilterOptions            `json:"options"`
	GroupBy    models.Dimension         `json:"group_by"`
	AllocateBy models.Dimension         `json:"allocate_by"`
	Summary    *Summary                 `json:"summary,omitempty"`
	Table      []TableRow               `json:"table,omitempty"`
	Allocation []models.AllocationSlice `json:"allocation,omitempty"`
	Details    []DetailRow              `json:"details,omitempty"`
}

// Err maps the report condition back to the sentinel error behind it.
func (r *Report) Err() error {
	switch r.Condition {
	case ConditionMissingSource:
		return loader.ErrMissingSource
	case ConditionEmptyResult:
		return ErrEmptyResult
	case ConditionLoadFailed:
		return fmt.Errorf("%w: %s", ErrLoadFailed, r.Message)
	}
	return nil
}

type Dashboard struct {
	cache       *SourceCache
	mappingsDir string
	log         *logrus.Logger
}

func NewDashboard(c *SourceCache, mappingsDir string, log *logrus.Logger) *Dashboard {
	return &Dashboard{cache: c, mappingsDir: mappingsDir, log: log}
}

func (d *Dashboard) Store() *i18n.Store {
	return d.cache.Localization(d.mappingsDir)
}

// Build runs one full pass of the pipeline. It never fails: load problems and
// empty filter results are reported through Condition and Message.
func (d *Dashboard) Build(ctx context.Context, req Request) *Report {
	store := d.Store()
	lang := req.Lang
	if !i18n.Supported(lang) {
		lang = i18n.Languages[0].Tag
	}
	rep := &Report{
		Lang:       lang,
		Labels:     labels(store, lang, req.GroupBy, req.AllocateBy),
		Selection:  req.Selection,
		GroupBy:    req.GroupBy,
		AllocateBy: req.AllocateBy,
		Options:    Options(nil),
	}

	if req.Source == nil {
		d.log.Info("no portfolio source available")
		rep.fail(ConditionMissingSource, store.Text(MsgMissingSource, lang))
		return rep
	}
	rep.SourceID = req.Source.ID()

	holdings, err := d.cache.Holdings(ctx, req.Source)
	switch {
	case errors.Is(err, loader.ErrMissingSource):
		d.log.Infof("portfolio source missing: %v", err)
		rep.fail(ConditionMissingSource, store.Text(MsgMissingSource, lang))
		return rep
	case err != nil:
		d.log.Warnf("load %s failed: %v", req.Source.ID(), err)
		rep.fail(ConditionLoadFailed, fmt.Sprintf("%s %v", store.Text(MsgLoadFailed, lang), err))
		return rep
	case len(holdings) == 0:
		rep.fail(ConditionMissingSource, store.Text(MsgMissingSource, lang))
		return rep
	}

	enriched := Enrich(holdings, store, lang)
	rep.Options = Options(enriched)

	filtered := Filter(enriched, req.Selection)
	if len(filtered) == 0 {
		rep.fail(ConditionEmptyResult, store.Text(MsgEmptyResult, lang))
		return rep
	}

	rep.Condition = ConditionOK
	rep.Summary = summarize(Totals(filtered))
	rep.Table = table(Aggregate(filtered, req.GroupBy))
	rep.Allocation = Allocate(filtered, req.AllocateBy)
	rep.Details = details(filtered)
	return rep
}

func (r *Report) fail(c Condition, msg string) {
	r.Condition = c
	r.Message = msg
}

func labels(store *i18n.Store, lang string, groupBy, allocateBy models.Dimension) Labels {
	text := func(key string) string { return store.Text(key, lang) }
	return Labels{
		Title:            text("Portfolio Summary"),
		Investment:       text("Investment"),
		CurrentValue:     text("Current Value"),
		HPR:              text("HPR"),
		SummaryTable:     text("Summary Table"),
		SummarizeBy:      text("Summarize By"),
		GroupBy:          text(groupBy.Title()),
		Allocation:       text("Investment Allocation"),
		AllocationBy:     text("Allocation by"),
		AllocationTitle:  fmt.Sprintf("%s (%s)", text("Investment Allocation"), text(allocateBy.Title())),
		DetailedHoldings: text("Detailed Holdings"),
		Portfolio:        text("Select Portfolio"),
		Member:           text("Select Member"),
		Sector:           text("Select Sector"),
		Broker:           text("Select Broker"),
		StockName:        text("Stock Name"),
		Quantity:         text("Quantity"),
	}
}

func summarize(t models.Total) *Summary {
	return &Summary{
		Investment:   format.Currency(t.Investment),
		CurrentValue: format.Currency(t.CurrentValue),
		HPR:          format.Percent(t.HPR),
		Raw:          t,
	}
}

func table(rows []models.AggregateRow) []TableRow {
	res := make([]TableRow, len(rows))
	pct := make([]string, len(rows))
	for i, r := range rows {
		pct[i] = format.Percent(r.HPR)
		res[i] = TableRow{
			Key:          r.Key,
			Investment:   format.Currency(r.Investment),
			CurrentValue: format.Currency(r.CurrentValue),
			HPR:          pct[i],
		}
	}
	for i, hl := range format.Highlight(pct) {
		res[i].Highlight = hl
	}
	return res
}

func details(rows []models.EnrichedHolding) []DetailRow {
	res := make([]DetailRow, len(rows))
	pct := make([]string, len(rows))
	for i, r := range rows {
		pct[i] = format.Percent(r.HPR)
		res[i] = DetailRow{
			Member:       r.MemberName,
			Broker:       r.Broker,
			Sector:       r.SectorDisplayName,
			Stock:        r.StockName,
			Quantity:     format.Quantity(r.Quantity),
			Investment:   format.CurrencyNull(r.ValueAtCost),
			CurrentValue: format.CurrencyNull(r.ValueAtMarket),
			HPR:          pct[i],
		}
	}
	for i, hl := range format.Highlight(pct) {
		res[i].Highlight = hl
	}
	return res
}
