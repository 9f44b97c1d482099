package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockTerminal/internal/model"
)

// HelpText lists the bot commands.
const HelpText = "📊 <b>Stock Terminal</b>\n\n" +
	"Send a ticker symbol (e.g. AAPL, MSFT, TSLA) to get its summary.\n\n" +
	"/help - show this message\n" +
	"/clear - drop all cached market data"

// FormatRenderModel formats one query result as a Telegram message.
func FormatRenderModel(rm *model.RenderModel) string {
	if !rm.Found {
		return fmt.Sprintf("❌ %s (%s)", html.EscapeString(rm.Message), html.EscapeString(rm.Symbol))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏢 <b>%s</b> (%s)\n\n", html.EscapeString(rm.Company.Name), html.EscapeString(rm.Symbol))
	for _, m := range rm.Company.Metrics {
		fmt.Fprintf(&b, "%s: %s\n", m.Label, html.EscapeString(m.Value))
	}

	if t, ok := rm.Table(model.ViewAnnualized); ok {
		b.WriteString("\n📈 <b>Annualized Return</b>\n")
		for _, row := range t.Rows {
			fmt.Fprintf(&b, "  %s: %s\n", row.Label, percent(row.Values[0]))
		}
	}
	fmt.Fprintf(&b, "\n⚠️ Annual Volatility: %s\n", percent(rm.Volatility))

	for _, w := range rm.Warnings {
		fmt.Fprintf(&b, "\n<i>%s</i>", html.EscapeString(w))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatDigest formats a watchlist summary, one line per symbol.
func FormatDigest(results []*model.RenderModel, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 <b>Watchlist digest</b> | %s\n\n", at.Format("2006-01-02"))
	for _, rm := range results {
		if !rm.Found {
			fmt.Fprintf(&b, "%s: not found\n", html.EscapeString(rm.Symbol))
			continue
		}
		oneYear := model.NotAvailable
		if t, ok := rm.Table(model.ViewAnnualized); ok && len(t.Rows) > 0 {
			oneYear = t.Rows[0].Values[0]
		}
		fmt.Fprintf(&b, "<b>%s</b>  1Y %s | vol %s\n", html.EscapeString(rm.Symbol), percent(oneYear), percent(rm.Volatility))
	}
	return strings.TrimRight(b.String(), "\n")
}

func percent(m model.Metric) string {
	if !m.Available {
		return m.String()
	}
	return m.String() + "%"
}
