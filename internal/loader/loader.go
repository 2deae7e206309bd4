package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"portfoliodash/internal/models"
)

var (
	ErrMissingSource = errors.New("portfolio source not found")
	ErrMissingColumn = errors.New("required column missing")
)

const (
	ColMemberCode    = "Member Code"
	ColISINCode      = "ISIN Code"
	ColSectorName    = "Sector Name"
	ColBroker        = "Broker"
	ColPortfolio     = "Portfolio"
	ColQty           = "Qty"
	ColValueAtCost   = "Value At Cost"
	ColValueAtMarket = "Value At Market Price"
)

var RequiredColumns = []string{
	ColMemberCode, ColISINCode, ColSectorName, ColBroker,
	ColPortfolio, ColQty, ColValueAtCost, ColValueAtMarket,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadFile parses the holdings CSV at path. An absent file is reported as
// ErrMissingSource.
func LoadFile(path string) ([]models.Holding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
		}
		return nil, err
	}
	return Parse(bytes.NewReader(b))
}

// Parse reads a header row followed by holdings rows. Numeric cells that do
// not parse are kept as missing values; no other validation is done.
func Parse(r io.Reader) ([]models.Holding, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return []models.Holding{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	res := []models.Holding{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if blank(record) {
			continue
		}
		cell := func(col string) string {
			i := idx[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		res = append(res, models.Holding{
			MemberCode:    cell(ColMemberCode),
			ISINCode:      cell(ColISINCode),
			SectorName:    cell(ColSectorName),
			Broker:        cell(ColBroker),
			Portfolio:     cell(ColPortfolio),
			Quantity:      models.ParseAmount(cell(ColQty)),
			ValueAtCost:   models.ParseAmount(cell(ColValueAtCost)),
			ValueAtMarket: models.ParseAmount(cell(ColValueAtMarket)),
		})
	}
	return res, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = string(bytes.TrimPrefix([]byte(h), utf8BOM))
		}
		h = strings.TrimSpace(h)
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	missing := []string{}
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
