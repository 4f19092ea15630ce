package tgCallback

// Inline button uniques. The payload travels in the callback data.
const (
	AddStock      string = "add_stock"
	SelectStock   string = "select_stock" // payload: symbol
	Sort          string = "sort"         // payload: column number
	Cancel        string = "cancel"
	ShowPortfolio string = "show_portfolio"
	Export        string = "export"
	Page          string = "page" // payload: zero based page number
)
