package proxyModel

import "encoding/json"

// Wire shapes of the quote proxy. Numbers are emitted as JSON numbers.

type SearchMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

type Quote struct {
	Symbol   string       `json:"symbol"`
	Name     string       `json:"name"`
	Exchange string       `json:"exchange"`
	Price    json.Number  `json:"price"`
	Sector   string       `json:"sector,omitempty"`
	PERatio  *json.Number `json:"peratio"`
	EPS      *json.Number `json:"eps"`
}

type Error struct {
	Error string `json:"error"`
}
