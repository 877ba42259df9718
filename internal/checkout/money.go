package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rosema/rosema-backend/pkg/enums"
)

// Money formats amounts for one locale and currency.
type Money struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewMoney parses a BCP 47 locale (es-AR) and one of the store currencies.
func NewMoney(locale, code string) (*Money, error) {
	if _, err := enums.ParseCurrency(code); err != nil {
		return nil, err
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	return &Money{printer: message.NewPrinter(tag), unit: unit}, nil
}

// Format renders amount with the currency symbol and locale separators.
func (m *Money) Format(amount decimal.Decimal) string {
	return m.printer.Sprint(currency.Symbol(m.unit.Amount(amount.InexactFloat64())))
}
