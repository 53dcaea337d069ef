package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"portfoliotracker/internal/insight"
	"portfoliotracker/pkg/portfolio"
)

const insightTimeout = 3 * time.Minute

const insightSystemPrompt = `You are a portfolio review assistant.
You receive a snapshot of a personal investment portfolio: each position's ticker,
asset type, weight in the portfolio, average buy price and unrealized P&L percent.
Respond with a JSON object only, no Markdown and no extra text, with fields:
- summary: string
- risk_level: one of low, medium, high
- findings: string[]
- disclaimer: string
Comment on concentration, asset-type mix and unrealized losses. Never promise returns.`

// InsightRequest selects the LLM used by AnalyzePortfolio.
type InsightRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
	BaseURL  string `json:"baseUrl"`
}

// InsightResult is the structured commentary returned to clients.
type InsightResult struct {
	GeneratedAt string   `json:"generatedAt"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Summary     string   `json:"summary"`
	RiskLevel   string   `json:"riskLevel"`
	Findings    []string `json:"findings"`
	Disclaimer  string   `json:"disclaimer"`
}

type insightModelResponse struct {
	Summary    string   `json:"summary"`
	RiskLevel  string   `json:"risk_level"`
	Findings   []string `json:"findings"`
	Disclaimer string   `json:"disclaimer"`
}

type insightPosition struct {
	Ticker     string           `json:"ticker"`
	AssetType  string           `json:"asset_type"`
	WeightPct  portfolio.Amount `json:"weight_pct"`
	AvgPrice   portfolio.Amount `json:"avg_price"`
	PnLPercent portfolio.Amount `json:"pnl_pct"`
}

// AnalyzePortfolio asks an LLM for commentary on the current positions.
func (c *Core) AnalyzePortfolio(ctx context.Context, req InsightRequest) (*InsightResult, error) {
	provider, err := c.newProvider(insight.Config{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		Model:    req.Model,
		BaseURL:  req.BaseURL,
	})
	if err != nil {
		return nil, WrapError(ErrCodeInvalidInput, "invalid insight provider", err)
	}

	positions, err := c.GetPositions()
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, NewError(ErrCodeInvalidInput, "no positions to analyze")
	}
	userPrompt, err := buildInsightUserPrompt(positions)
	if err != nil {
		return nil, WrapError(ErrCodeInternal, "build prompt", err)
	}

	ctx, cancel := context.WithTimeout(ctx, insightTimeout)
	defer cancel()
	completion, err := provider.Complete(ctx, insight.Prompt{System: insightSystemPrompt, User: userPrompt})
	if err != nil {
		c.logger.Warn("insight request failed", "provider", provider.Name(), "err", err)
		return nil, WrapError(ErrCodeUpstream, "insight request failed", err)
	}

	parsed, err := parseInsightResponse(completion.Content)
	if err != nil {
		return nil, WrapError(ErrCodeUpstream, "parse insight response", err)
	}

	riskLevel := strings.ToLower(strings.TrimSpace(parsed.RiskLevel))
	if riskLevel == "" {
		riskLevel = "unknown"
	}
	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		summary = "The model returned no summary."
	}
	disclaimer := strings.TrimSpace(parsed.Disclaimer)
	if disclaimer == "" {
		disclaimer = "For information only. Not investment advice."
	}
	return &InsightResult{
		GeneratedAt: c.nowRFC3339(),
		Provider:    provider.Name(),
		Model:       completion.Model,
		Summary:     summary,
		RiskLevel:   riskLevel,
		Findings:    normalizeFindings(parsed.Findings),
		Disclaimer:  disclaimer,
	}, nil
}

func buildInsightUserPrompt(positions []portfolio.Position) (string, error) {
	total := portfolio.TotalValue(positions)
	hundred := decimal.NewFromInt(100)
	items := make([]insightPosition, 0, len(positions))
	for _, p := range positions {
		item := insightPosition{
			Ticker:    p.Ticker,
			AssetType: strings.ToLower(string(p.AssetType)),
			WeightPct: portfolio.Zero,
			AvgPrice:  p.AvgPrice,
		}
		if !total.IsZero() {
			item.WeightPct = portfolio.Amount{Decimal: p.TotalValue.Decimal.Div(total.Decimal).Mul(hundred).Round(2)}
		}
		item.PnLPercent = portfolio.Zero
		if !p.TotalCost.IsZero() {
			item.PnLPercent = portfolio.Amount{Decimal: p.PnL.Decimal.Div(p.TotalCost.Decimal).Mul(hundred).Round(2)}
		}
		items = append(items, item)
	}
	data, err := json.MarshalIndent(map[string]any{"positions": items}, "", "  ")
	if err != nil {
		return "", err
	}
	return "Portfolio snapshot:\n" + string(data), nil
}

func parseInsightResponse(content string) (*insightModelResponse, error) {
	cleaned := cleanupModelJSON(content)
	if cleaned == "" {
		return nil, errors.New("model returned empty content")
	}
	var parsed insightModelResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return &parsed, nil
}

// cleanupModelJSON strips Markdown fences and any prose around the outermost
// JSON object.
func cleanupModelJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		lines := strings.Split(trimmed, "\n")
		if len(lines) >= 2 {
			lines = lines[1:]
			if strings.TrimSpace(lines[len(lines)-1]) == "```" {
				lines = lines[:len(lines)-1]
			}
			trimmed = strings.Join(lines, "\n")
		}
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		trimmed = trimmed[start : end+1]
	}
	return strings.TrimSpace(trimmed)
}

func normalizeFindings(findings []string) []string {
	result := make([]string, 0, len(findings))
	for _, item := range findings {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}
