package portfolio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

var (
	ErrAlreadyExists   = errors.New("position already exists")
	ErrInvalidPosition = errors.New("invalid position")
)

// Store is the ordered list of held positions, most recently added first.
// Positions are never edited or removed.
type Store struct {
	positions []model.Position
}

// NewStore creates a store holding positions in the given order.
func NewStore(positions ...model.Position) *Store {
	s := &Store{positions: make([]model.Position, 0, len(positions))}
	s.positions = append(s.positions, positions...)
	return s
}

// Add validates p and puts it at the head of the store.
func (s *Store) Add(p model.Position) error {
	p.Symbol = NormalizeSymbol(p.Symbol)

	if err := validate(p); err != nil {
		return err
	}

	if s.Contains(p.Symbol) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, p.Symbol)
	}

	s.positions = append([]model.Position{p}, s.positions...)
	return nil
}

func (s *Store) Contains(symbol string) bool {
	for _, p := range s.positions {
		if strings.EqualFold(p.Symbol, symbol) {
			return true
		}
	}
	return false
}

// Positions returns a copy of the stored positions in store order.
func (s *Store) Positions() []model.Position {
	res := make([]model.Position, len(s.positions))
	copy(res, s.positions)
	return res
}

func (s *Store) Len() int {
	return len(s.positions)
}

func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func validate(p model.Position) error {
	switch {
	case p.Symbol == "":
		return fmt.Errorf("%w: empty symbol", ErrInvalidPosition)
	case !p.PurchasePrice.IsPositive():
		return fmt.Errorf("%w: purchase price must be positive, got %s", ErrInvalidPosition, p.PurchasePrice)
	case !p.Quantity.IsPositive():
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidPosition, p.Quantity)
	case p.CurrentPrice.IsNegative():
		return fmt.Errorf("%w: negative current price %s", ErrInvalidPosition, p.CurrentPrice)
	}
	return nil
}
