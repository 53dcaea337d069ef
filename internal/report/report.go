// Package report renders portfolio snapshots as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"portfoliotracker/pkg/portfolio"
	"portfoliotracker/pkg/tracker"
)

// DefaultCurrency is used when Data.Currency is empty or unknown.
const DefaultCurrency = money.USD

// Data is everything a report shows.
type Data struct {
	GeneratedAt time.Time
	Currency    string
	Summary     tracker.Summary
	Positions   []portfolio.Position
	Timeline    []portfolio.TimelinePoint
}

var hundred = decimal.NewFromInt(100)

// Source is the read side of tracker.Core that a report needs.
type Source interface {
	Now() time.Time
	GetSummary() (tracker.Summary, error)
	GetPositions() ([]portfolio.Position, error)
	GetTimeline(window portfolio.TimeWindow) ([]portfolio.TimelinePoint, error)
}

// Build collects report data from src.
func Build(src Source, currency string, window portfolio.TimeWindow) (Data, error) {
	summary, err := src.GetSummary()
	if err != nil {
		return Data{}, err
	}
	positions, err := src.GetPositions()
	if err != nil {
		return Data{}, err
	}
	timeline, err := src.GetTimeline(window)
	if err != nil {
		return Data{}, err
	}
	return Data{
		GeneratedAt: src.Now(),
		Currency:    currency,
		Summary:     summary,
		Positions:   positions,
		Timeline:    timeline,
	}, nil
}

// Markdown renders d as a GitHub-flavored Markdown document.
func Markdown(d Data) string {
	currency := normalizeCurrency(d.Currency)

	var b strings.Builder
	b.WriteString("# Portfolio Report\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", d.GeneratedAt.Format("Jan 2, 2006 15:04 MST"))

	b.WriteString("## Summary\n\n")
	writeSummary(&b, d.Summary, currency)

	b.WriteString("## Positions\n\n")
	writePositions(&b, d.Positions, currency)
	writeAllocation(&b, d.Positions)

	if len(d.Timeline) > 0 {
		b.WriteString("## History\n\n")
		writeTimeline(&b, d.Timeline, currency)
	}
	return b.String()
}

// PositionsMarkdown renders the summary and positions tables only.
func PositionsMarkdown(summary tracker.Summary, positions []portfolio.Position, currency string) string {
	currency = normalizeCurrency(currency)
	var b strings.Builder
	writeSummary(&b, summary, currency)
	writePositions(&b, positions, currency)
	return b.String()
}

// TimelineMarkdown renders a timeline as a table.
func TimelineMarkdown(points []portfolio.TimelinePoint, currency string) string {
	if len(points) == 0 {
		return "_No history._\n"
	}
	var b strings.Builder
	writeTimeline(&b, points, normalizeCurrency(currency))
	return b.String()
}

func normalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if money.GetCurrency(currency) == nil {
		return DefaultCurrency
	}
	return currency
}

func writeSummary(b *strings.Builder, s tracker.Summary, currency string) {
	b.WriteString("| Total value | Cost basis | Unrealized P&L | Return | Positions |\n")
	b.WriteString("|---:|---:|---:|---:|---:|\n")
	fmt.Fprintf(b, "| %s | %s | %s | %s | %d |\n\n",
		FormatMoney(s.TotalValue, currency),
		FormatMoney(s.TotalCost, currency),
		signedMoney(s.TotalPnL, currency),
		FormatPercent(s.PnLPercent),
		s.PositionCount,
	)
}

func writePositions(b *strings.Builder, positions []portfolio.Position, currency string) {
	if len(positions) == 0 {
		b.WriteString("_No open positions._\n\n")
		return
	}
	b.WriteString("| Ticker | Name | Type | Quantity | Avg price | Price | 24h | Value | P&L |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, p := range positions {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			escape(p.Ticker),
			escape(p.Name),
			p.AssetType,
			p.Quantity.String(),
			FormatMoney(p.AvgPrice, currency),
			FormatMoney(p.CurrentPrice, currency),
			signedPercent(p.PriceChange24h),
			FormatMoney(p.TotalValue, currency),
			signedMoney(p.PnL, currency),
		)
	}
	b.WriteString("\n")
}

func writeTimeline(b *strings.Builder, points []portfolio.TimelinePoint, currency string) {
	b.WriteString("| Date | Value | Cost basis |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, p := range points {
		fmt.Fprintf(b, "| %s | %s | %s |\n", p.Date, FormatMoney(p.Value, currency), FormatMoney(p.CostBasis, currency))
	}
	b.WriteString("\n")
}

func writeAllocation(b *strings.Builder, positions []portfolio.Position) {
	total := portfolio.TotalValue(positions)
	if total.IsZero() {
		return
	}
	byType := map[portfolio.AssetType]portfolio.Amount{}
	for _, p := range positions {
		byType[p.AssetType] = byType[p.AssetType].Add(p.TotalValue)
	}
	b.WriteString("## Allocation\n\n")
	b.WriteString("| Asset type | Weight |\n")
	b.WriteString("|---|---:|\n")
	for _, t := range []portfolio.AssetType{portfolio.Stock, portfolio.Crypto} {
		v, ok := byType[t]
		if !ok {
			continue
		}
		weight := portfolio.Amount{Decimal: v.Decimal.Div(total.Decimal).Mul(hundred)}
		fmt.Fprintf(b, "| %s | %s |\n", t, FormatPercent(weight))
	}
	b.WriteString("\n")
}

// HTML converts Markdown produced by this package into an HTML fragment.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// FormatMoney formats a in currency's minor units, e.g. "$1,234.50".
func FormatMoney(a portfolio.Amount, currency string) string {
	// money.New is the only way to get a non-nil currency for unknown codes.
	cur := money.New(0, currency).Currency()
	minor := a.Decimal.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatPercent formats a percentage with two decimals.
func FormatPercent(a portfolio.Amount) string {
	return a.Decimal.StringFixed(2) + "%"
}

func signedMoney(a portfolio.Amount, currency string) string {
	if a.IsPositive() {
		return "+" + FormatMoney(a, currency)
	}
	return FormatMoney(a, currency)
}

func signedPercent(a portfolio.Amount) string {
	if a.IsPositive() {
		return "+" + FormatPercent(a)
	}
	return FormatPercent(a)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
