package telebotConverter

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/tg/tgCallback"
	"github.com/KotFed0t/portfolio_tracker/internal/portfolio"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const (
	NotAvailable = "N/A"
	maxNameLen   = 48
)

func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func FormatNullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotAvailable
	}
	return d.Decimal.StringFixed(2)
}

func FormatPercent(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotAvailable
	}
	return d.Decimal.StringFixed(2) + "%"
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + FormatMoney(d)
	}
	return FormatMoney(d)
}

// SortButtonText marks the sorted column with its direction.
func SortButtonText(c model.Column, sorting model.Sorting) string {
	text := portfolio.Header(c)
	if sorting.Column != c {
		return text
	}
	switch sorting.Direction {
	case model.Ascending:
		return text + " ▲"
	case model.Descending:
		return text + " ▼"
	}
	return text
}

// PortfolioResponse renders the summary and one page of the rows in the given
// order (HTML). rows is the whole sorted table; page is clamped to the existing pages.
func PortfolioResponse(summary portfolio.Summary, rows []portfolio.Row, sorting model.Sorting, page, perPage int) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	pageRows, page, totalPages := portfolio.Paginate(rows, page, perPage)

	sb.WriteString("📊 <b>Portfolio</b>\n")
	sb.WriteString(fmt.Sprintf("💰 Total Investment: <b>%s</b>\n", FormatMoney(summary.TotalInvestment)))
	sb.WriteString(fmt.Sprintf("📈 Total Current Value: <b>%s</b>\n", FormatMoney(summary.TotalCurrentValue)))
	sb.WriteString(fmt.Sprintf("Gain/Loss: <b>%s</b> (%s)\n\n", signed(summary.TotalGainLoss), FormatPercent(summary.TotalGainLossPercent)))

	if len(rows) == 0 {
		sb.WriteString("No stocks yet. Press «Add stock» to add the first one.\n")
	}

	offset := page * perPage
	for i, row := range pageRows {
		sb.WriteString(fmt.Sprintf("%d. <b>%s</b> %s\n", offset+i+1, html.EscapeString(row.Symbol), html.EscapeString(shorten(row.Name, maxNameLen))))
		if row.Exchange != "" || row.Sector != "" {
			sb.WriteString(fmt.Sprintf("   %s %s\n", html.EscapeString(string(row.Exchange)), html.EscapeString(shorten(row.Sector, maxNameLen))))
		}
		sb.WriteString(fmt.Sprintf("   ▸ Purchase Price: %s × %s = %s\n", FormatMoney(row.PurchasePrice), row.Quantity.String(), FormatMoney(row.Investment)))
		sb.WriteString(fmt.Sprintf("   ▸ CMP: %s, Present Value: <b>%s</b>\n", FormatMoney(row.CurrentPrice), FormatMoney(row.PresentValue)))
		sb.WriteString(fmt.Sprintf("   ▸ Gain/Loss: %s (%s)\n", signed(row.GainLoss), FormatPercent(row.GainLossPercent)))
		sb.WriteString(fmt.Sprintf("   ▸ Portfolio: %s\n", FormatPercent(row.PortfolioPercentage)))
		sb.WriteString(fmt.Sprintf("   ▸ P/E: %s, EPS: %s\n\n", FormatNullDecimal(row.PERatio), FormatNullDecimal(row.LatestEarnings)))
	}

	if totalPages > 1 {
		sb.WriteString(fmt.Sprintf("Page %d of %d\n", page+1, totalPages))
	}

	sortBtns := make([]tele.Btn, 0, len(portfolio.Columns()))
	for _, c := range portfolio.Columns() {
		sortBtns = append(sortBtns, markup.Data(SortButtonText(c, sorting), tgCallback.Sort, strconv.Itoa(int(c))))
	}

	keyboard := []tele.Row{markup.Row(markup.Data("➕ Add stock", tgCallback.AddStock))}

	paginationBtns := make([]tele.Btn, 0, 2)
	if page > 0 {
		paginationBtns = append(paginationBtns, markup.Data("◀ Prev", tgCallback.Page, strconv.Itoa(page-1)))
	}
	if page < totalPages-1 {
		paginationBtns = append(paginationBtns, markup.Data("Next ▶", tgCallback.Page, strconv.Itoa(page+1)))
	}
	if len(paginationBtns) > 0 {
		keyboard = append(keyboard, markup.Row(paginationBtns...))
	}

	if len(rows) > 0 {
		keyboard = append(keyboard, markup.Split(2, sortBtns)...)
		keyboard = append(keyboard, markup.Row(markup.Data("📄 Export", tgCallback.Export)))
	}
	markup.Inline(keyboard...)

	return sb.String(), markup
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func SearchPromptResponse() (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data("Cancel", tgCallback.Cancel)))
	return "🔎 Enter a company name or ticker to search:", markup
}

// SearchResultsResponse offers one button per found symbol.
func SearchResultsResponse(query string, results []string) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}

	cancelRow := markup.Row(markup.Data("Cancel", tgCallback.Cancel))

	if len(results) == 0 {
		markup.Inline(cancelRow)
		return fmt.Sprintf("Nothing found for «%s». Try another query:", html.EscapeString(query)), markup
	}

	btns := make([]tele.Btn, 0, len(results))
	for _, symbol := range results {
		btns = append(btns, markup.Data(symbol, tgCallback.SelectStock, symbol))
	}

	rows := markup.Split(3, btns)
	rows = append(rows, cancelRow)
	markup.Inline(rows...)

	return fmt.Sprintf("Results for «%s». Pick a stock or enter another query:", html.EscapeString(query)), markup
}

func CommitPromptResponse(symbol string) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data("Cancel", tgCallback.Cancel)))
	return fmt.Sprintf("<b>%s</b> selected.\nEnter purchase price and quantity separated by a space, e.g. <code>152.5 10</code>:", html.EscapeString(symbol)), markup
}

func PositionAddedText(p model.Position) string {
	return fmt.Sprintf("✅ %s added: %s × %s, CMP %s", html.EscapeString(p.Symbol), p.Quantity.String(), FormatMoney(p.PurchasePrice), FormatMoney(p.CurrentPrice))
}

func ShowPortfolioMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data("📊 Portfolio", tgCallback.ShowPortfolio)))
	return markup
}
