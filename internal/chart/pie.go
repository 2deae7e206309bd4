package chart

import (
	"bytes"
	"errors"
	"fmt"

	"portfoliodash/internal/format"
	"portfoliodash/internal/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoSlices = errors.New("allocation has no positive values")

const (
	Width  = 640
	Height = 640
)

// RenderPie draws the allocation series as a PNG pie. Slices with a zero or
// negative value are left out.
func RenderPie(title string, slices []models.AllocationSlice) ([]byte, error) {
	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		if !s.Value.IsPositive() {
			continue
		}
		label := s.Label
		if label == "" {
			label = format.Missing
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %s", label, format.Currency(s.Value)),
			Value: s.Value.InexactFloat64(),
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				StrokeWidth: 1,
			},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoSlices
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  Width,
		Height: Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
