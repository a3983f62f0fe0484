// Package report assembles the driver daily report and renders it as PDF
// through Gotenberg.
package report

import (
	"context"
	"time"

	"github.com/kurier-ops/kurier-ops/internal/cashdesk"
	"github.com/kurier-ops/kurier-ops/internal/deliveries"
	"github.com/kurier-ops/kurier-ops/internal/drivers"
	"github.com/kurier-ops/kurier-ops/internal/expenses"
	"github.com/kurier-ops/kurier-ops/internal/shared"
)

// DriverSource supplies driver records.
type DriverSource interface {
	Get(ctx context.Context, id string) (*drivers.Driver, error)
}

// DeliverySource supplies a driver's deliveries for one day.
type DeliverySource interface {
	ListByDriverDay(ctx context.Context, driverID string, day time.Time) ([]deliveries.Delivery, error)
}

// ExpenseSource supplies a driver's expenses for one day.
type ExpenseSource interface {
	ListByDriverDay(ctx context.Context, driverID string, day time.Time) ([]expenses.Expense, error)
}

// StatusSource supplies the reconciliation view for one driver/day.
type StatusSource interface {
	Get(ctx context.Context, driverID string, day time.Time) (*cashdesk.DayStatusView, error)
}

// Totals aggregates the payment split across a day's deliveries.
type Totals struct {
	Cash     float64 `json:"cash"`
	Card     float64 `json:"card"`
	Transfer float64 `json:"transfer"`
	Debt     float64 `json:"debt"`
	Goods    float64 `json:"goods"`
	Extra    float64 `json:"extraPayments"`
	Expenses float64 `json:"expenses"`
	CashDue  float64 `json:"cashDue"`
}

// DailyReport is the full end-of-day view for one driver.
type DailyReport struct {
	Driver     drivers.Driver          `json:"driver"`
	Date       string                  `json:"date"`
	Deliveries []deliveries.Delivery   `json:"deliveries"`
	Expenses   []expenses.Expense      `json:"expenses"`
	DayStatus  *cashdesk.DayStatusView `json:"dayStatus"`
	Totals     Totals                  `json:"totals"`
}

// Builder assembles daily reports from the domain modules.
type Builder struct {
	drivers    DriverSource
	deliveries DeliverySource
	expenses   ExpenseSource
	statuses   StatusSource
}

// NewBuilder wires a builder.
func NewBuilder(d DriverSource, dl DeliverySource, e ExpenseSource, s StatusSource) *Builder {
	return &Builder{drivers: d, deliveries: dl, expenses: e, statuses: s}
}

// Build collects one driver's day into a report.
func (b *Builder) Build(ctx context.Context, driverID string, day time.Time) (*DailyReport, error) {
	driver, err := b.drivers.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}
	dls, err := b.deliveries.ListByDriverDay(ctx, driverID, day)
	if err != nil {
		return nil, err
	}
	exps, err := b.expenses.ListByDriverDay(ctx, driverID, day)
	if err != nil {
		return nil, err
	}
	status, err := b.statuses.Get(ctx, driverID, day)
	if err != nil {
		return nil, err
	}

	rep := DailyReport{
		Driver:     *driver,
		Date:       day.Format(shared.DayFormat),
		Deliveries: dls,
		Expenses:   exps,
		DayStatus:  status,
	}
	if rep.Deliveries == nil {
		rep.Deliveries = []deliveries.Delivery{}
	}
	if rep.Expenses == nil {
		rep.Expenses = []expenses.Expense{}
	}
	for _, d := range dls {
		rep.Totals.Cash += d.CashAmount
		rep.Totals.Card += d.CardAmount
		rep.Totals.Transfer += d.Transfer
		rep.Totals.Debt += d.Debt
		rep.Totals.Goods += d.GoodsAmount
		rep.Totals.Extra += d.ExtraPayment
	}
	for _, e := range exps {
		rep.Totals.Expenses += e.Amount
	}
	rep.Totals.CashDue = rep.Totals.Cash + rep.Totals.Extra - rep.Totals.Expenses
	return &rep, nil
}
