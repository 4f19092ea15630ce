package alphaVantageModel

// Envelope carries the fields Alpha Vantage uses to report errors and throttling
// instead of a payload, always with status 200.
type Envelope struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

type RawSearch struct {
	Envelope
	BestMatches []RawSearchMatch `json:"bestMatches"`
}

type RawSearchMatch struct {
	Symbol   string `json:"1. symbol"`
	Name     string `json:"2. name"`
	Type     string `json:"3. type"`
	Region   string `json:"4. region"`
	Currency string `json:"8. currency"`
}

type RawGlobalQuote struct {
	Envelope
	GlobalQuote RawQuote `json:"Global Quote"`
}

type RawQuote struct {
	Symbol           string `json:"01. symbol"`
	Price            string `json:"05. price"`
	LatestTradingDay string `json:"07. latest trading day"`
}

type RawOverview struct {
	Envelope
	Symbol   string `json:"Symbol"`
	Name     string `json:"Name"`
	Exchange string `json:"Exchange"`
	Currency string `json:"Currency"`
	Sector   string `json:"Sector"`
	PERatio  string `json:"PERatio"`
	EPS      string `json:"EPS"`
}
