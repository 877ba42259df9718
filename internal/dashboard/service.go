package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rosema/rosema-backend/internal/catalog"
	"github.com/rosema/rosema-backend/internal/sales"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
)

const (
	DefaultTopProducts = 3
	DefaultRecentSales = 4
)

var hundred = decimal.NewFromInt(100)

// Service builds the POS dashboard figures.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

// Summary pairs inventory figures with this month's sales.
type Summary struct {
	Inventory catalog.InventoryStats `json:"inventory"`
	Sales     SalesSummary           `json:"sales"`
}

// SalesSummary compares the current calendar month with the previous one.
// RevenueChange is a percentage; it is 100 when the previous month had no
// revenue and this one does.
type SalesSummary struct {
	Month         string             `json:"month"`
	CurrentMonth  MonthTotals        `json:"current_month"`
	PreviousMonth MonthTotals        `json:"previous_month"`
	RevenueChange float64            `json:"revenue_change_pct"`
	TopProducts   []sales.TopProduct `json:"top_products"`
	Recent        []sales.Sale       `json:"recent"`
}

type MonthTotals struct {
	sales.PeriodTotals
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

type inventorySource interface {
	Inventory(ctx context.Context) (*catalog.InventoryStats, error)
}

type salesAggregates interface {
	Totals(ctx context.Context, from, to time.Time) (sales.PeriodTotals, error)
	TopProducts(ctx context.Context, limit int) ([]sales.TopProduct, error)
}

type recentSales interface {
	Recent(ctx context.Context, limit int) ([]sales.Sale, error)
}

// Options tunes the month boundaries and list sizes.
type Options struct {
	Location    *time.Location
	Now         func() time.Time
	TopProducts int
	RecentSales int
}

type service struct {
	inventory inventorySource
	totals    salesAggregates
	recent    recentSales
	loc       *time.Location
	now       func() time.Time
	top       int
	recentN   int
}

func NewService(inventory inventorySource, totals salesAggregates, recent recentSales, opts Options) (Service, error) {
	if inventory == nil {
		return nil, fmt.Errorf("inventory source required")
	}
	if totals == nil {
		return nil, fmt.Errorf("sales aggregates required")
	}
	if recent == nil {
		return nil, fmt.Errorf("recent sales source required")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TopProducts <= 0 {
		opts.TopProducts = DefaultTopProducts
	}
	if opts.RecentSales <= 0 {
		opts.RecentSales = DefaultRecentSales
	}
	return &service{
		inventory: inventory,
		totals:    totals,
		recent:    recent,
		loc:       opts.Location,
		now:       opts.Now,
		top:       opts.TopProducts,
		recentN:   opts.RecentSales,
	}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	inventory, err := s.inventory.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	nextMonth := monthStart.AddDate(0, 1, 0)
	prevMonth := monthStart.AddDate(0, -1, 0)

	current, err := s.totals.Totals(ctx, monthStart.UTC(), nextMonth.UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate current month sales")
	}
	previous, err := s.totals.Totals(ctx, prevMonth.UTC(), monthStart.UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate previous month sales")
	}
	top, err := s.totals.TopProducts(ctx, s.top)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank top products")
	}
	if top == nil {
		top = []sales.TopProduct{}
	}
	recent, err := s.recent.Recent(ctx, s.recentN)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Inventory: *inventory,
		Sales: SalesSummary{
			Month:         monthStart.Format("2006-01"),
			CurrentMonth:  withAverage(current),
			PreviousMonth: withAverage(previous),
			RevenueChange: percentChange(current.Revenue, previous.Revenue),
			TopProducts:   top,
			Recent:        recent,
		},
	}, nil
}

func withAverage(t sales.PeriodTotals) MonthTotals {
	out := MonthTotals{PeriodTotals: t, AverageTicket: decimal.Zero}
	if t.Sales > 0 {
		out.AverageTicket = t.Revenue.Div(decimal.NewFromInt(t.Sales)).Round(2)
	}
	return out
}

func percentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2).InexactFloat64()
}
