package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
)

// renderEstimate formats an estimate as a rounded two-column table. Prices
// are right aligned; provenance rows follow a separator.
func renderEstimate(est *model.PriceEstimate) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(estimateTitle(est))
	tw.AppendHeader(table.Row{"Field", "Value"})

	tw.AppendRows([]table.Row{
		{"Typical", formatPrice(est.Value.Typical)},
		{"Soft", formatPrice(est.Value.Soft)},
		{"Slabs", formatPrice(est.Value.Slabs)},
	})
	tw.AppendSeparator()

	image := "-"
	if est.ImageURL != nil {
		image = *est.ImageURL
	}
	tw.AppendRows([]table.Row{
		{"Method", string(est.Meta.Method)},
		{"Listings", fmt.Sprintf("%d (raw %d, slab %d)", est.Meta.Count, est.Meta.RawCount, est.Meta.SlabCount)},
		{"Image", image},
		{"Computed", est.Meta.ComputedAt.Format(time.RFC3339)},
		{"Cached", strconv.FormatBool(est.Meta.Cached)},
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func estimateTitle(est *model.PriceEstimate) string {
	if !est.Available() {
		return "No market data (stage none)"
	}
	return "Stage " + string(est.Meta.Stage)
}

func formatPrice(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return "$" + d.Decimal.StringFixed(2)
}
