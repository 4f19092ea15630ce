package model

type FlowState int

const (
	FlowIdle FlowState = iota
	FlowSearchOpen
	FlowResultsShown
	FlowStockSelected
	FlowCommitting
)

func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "idle"
	case FlowSearchOpen:
		return "search_open"
	case FlowResultsShown:
		return "results_shown"
	case FlowStockSelected:
		return "stock_selected"
	case FlowCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// FlowSnapshot is the serializable state of an add-position flow.
type FlowSnapshot struct {
	State          FlowState
	Query          string
	Results        []string
	SelectedSymbol string
}

// Session is everything the UI keeps for one chat. It lives until it expires.
type Session struct {
	Flow      FlowSnapshot
	Positions []Position
	Sorting   Sorting
	Page      int // zero based page of the portfolio view
}
