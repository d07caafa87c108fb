package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"MarketAnalytics/internal/model"
	"MarketAnalytics/internal/recorder"
)

// FormatReport formats an analysis result into a Telegram HTML message.
func FormatReport(res *model.AnalyticsResult, at time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Market Analytics</b> | %s\n", at.Format("2006-01-02")))
	if !res.Range.Start.IsZero() || !res.Range.End.IsZero() {
		b.WriteString(fmt.Sprintf("Range: %s → %s\n", dateOrDash(res.Range.Start), dateOrDash(res.Range.End)))
	}
	b.WriteString("\n")

	assets := sortedAssets(res)

	b.WriteString("📈 <b>Risk summary:</b>\n")
	for _, id := range assets {
		r := res.PerAsset[id].Risk
		b.WriteString(fmt.Sprintf("  <b>%s</b>  ret %s | vol %s | sharpe %s | mdd %s\n",
			html.EscapeString(id), pct(r.AnnualizedReturn), pct(r.Volatility),
			ratio(r.SharpeRatio), pct(r.MaxDrawdown)))
		for _, issue := range r.Issues {
			b.WriteString(fmt.Sprintf("    ⚠️ %s\n", html.EscapeString(issue)))
		}
	}

	if h := res.Highlights; h.BestPerformer != "" || len(h.HighSharpe) > 0 {
		b.WriteString("\n")
		if h.BestPerformer != "" {
			b.WriteString(fmt.Sprintf("🏆 Best performer: <b>%s</b>\n", html.EscapeString(h.BestPerformer)))
		}
		if len(h.HighSharpe) > 0 {
			b.WriteString(fmt.Sprintf("🚀 High Sharpe: %s\n", html.EscapeString(strings.Join(h.HighSharpe, ", "))))
		}
	}

	if pairs := correlationPairs(res.Correlation); len(pairs) > 0 {
		b.WriteString("\n🔗 <b>Correlation:</b>\n")
		for _, p := range pairs {
			b.WriteString("  " + p + "\n")
		}
	}

	var latest []string
	for _, id := range assets {
		if line := latestIndicators(res.PerAsset[id].Indicators); line != "" {
			latest = append(latest, fmt.Sprintf("  %s: %s", html.EscapeString(id), line))
		}
	}
	if len(latest) > 0 {
		b.WriteString("\n📐 <b>Latest indicators:</b>\n")
		b.WriteString(strings.Join(latest, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatAssets lists the tracked symbols.
func FormatAssets(symbols []string, benchmark string) string {
	var b strings.Builder
	b.WriteString("📦 <b>Tracked assets</b>\n\n")
	for _, s := range symbols {
		mark := ""
		if s == benchmark {
			mark = " (benchmark)"
		}
		b.WriteString(fmt.Sprintf("  • %s%s\n", html.EscapeString(s), mark))
	}
	return b.String()
}

// FormatHistory renders recently recorded runs.
func FormatHistory(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "No analysis runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n\n")
	for _, r := range runs {
		best := r.BestPerformer
		if best == "" {
			best = "-"
		}
		b.WriteString(fmt.Sprintf("  %s | %d assets | best %s\n",
			r.Timestamp.Format("2006-01-02 15:04"), len(r.Assets), html.EscapeString(best)))
	}
	return b.String()
}

func sortedAssets(res *model.AnalyticsResult) []string {
	ids := make([]string, 0, len(res.PerAsset))
	for id := range res.PerAsset {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func correlationPairs(m model.CorrelationMatrix) []string {
	var out []string
	for i := range m.Assets {
		for j := i + 1; j < len(m.Assets); j++ {
			v := "n/a"
			if c := m.Values[i][j]; c != nil {
				v = fmt.Sprintf("%+.2f", *c)
			}
			out = append(out, fmt.Sprintf("%s/%s: %s",
				html.EscapeString(m.Assets[i]), html.EscapeString(m.Assets[j]), v))
		}
	}
	return out
}

func latestIndicators(set model.IndicatorSet) string {
	var parts []string
	add := func(name string, s model.Series, format string) {
		if v, ok := s.Last(); ok {
			parts = append(parts, fmt.Sprintf("%s "+format, name, v))
		}
	}
	add("RSI", set.RSI, "%.1f")
	add("SMA", set.SMAShort, "%.2f")
	add("MACD", set.MACD, "%+.3f")
	add("BB↑", set.BollingerUpper, "%.2f")
	add("BB↓", set.BollingerLower, "%.2f")
	return strings.Join(parts, " | ")
}

func pct(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *v*100)
}

func ratio(r model.Ratio) string {
	switch {
	case r.Infinite:
		return "∞"
	case r.Value == nil:
		return "n/a"
	default:
		return fmt.Sprintf("%.2f", *r.Value)
	}
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "…"
	}
	return t.Format("2006-01-02")
}
