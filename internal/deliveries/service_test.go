package deliveries

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kurier-ops/kurier-ops/internal/platform/httpx"
)

type fakeStatus struct {
	DriverID string
	Date     time.Time
	Status   string
}

type fakeExpense struct {
	ID       string
	DriverID string
	Date     time.Time
}

type fakeLedgerRow struct {
	ID         string
	DeliveryID string
	Date       time.Time
}

// fakeRepo keeps the related tables in memory. InTx snapshots them and
// restores the snapshot when the callback fails, mirroring a rollback.
type fakeRepo struct {
	deliveries map[string]Delivery
	statuses   []fakeStatus
	expenses   []fakeExpense
	ledger     []fakeLedgerRow
	drivers    map[string]bool

	failOn  string
	txCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		deliveries: map[string]Delivery{},
		drivers:    map[string]bool{"drv-1": true, "drv-2": true},
	}
}

func (f *fakeRepo) List(_ context.Context, day *time.Time) ([]Delivery, error) {
	var out []Delivery
	for _, d := range f.deliveries {
		if day != nil && !sameDay(d.DeliveryDate, *day) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (*Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (f *fakeRepo) Create(_ context.Context, d Delivery) error {
	f.deliveries[d.ID] = d
	return nil
}

func (f *fakeRepo) Update(_ context.Context, d Delivery) error {
	if _, ok := f.deliveries[d.ID]; !ok {
		return ErrNotFound
	}
	f.deliveries[d.ID] = d
	return nil
}

func (f *fakeRepo) ListByDriverDay(_ context.Context, driverID string, day time.Time) ([]Delivery, error) {
	var out []Delivery
	for _, d := range f.deliveries {
		if d.DriverID == driverID && sameDay(d.DeliveryDate, day) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByClient(_ context.Context, clientID string) ([]Delivery, error) {
	var out []Delivery
	for _, d := range f.deliveries {
		if d.ClientID == clientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) CashTotal(_ context.Context, driverID string, day time.Time) (float64, error) {
	var total float64
	for _, d := range f.deliveries {
		if d.DriverID == driverID && sameDay(d.DeliveryDate, day) {
			total += d.CashAmount
		}
	}
	return total, nil
}

func (f *fakeRepo) InTx(_ context.Context, fn func(ops TxOps) error) error {
	f.txCalls++
	snapDeliveries := make(map[string]Delivery, len(f.deliveries))
	for k, v := range f.deliveries {
		snapDeliveries[k] = v
	}
	snapStatuses := append([]fakeStatus(nil), f.statuses...)
	snapExpenses := append([]fakeExpense(nil), f.expenses...)
	snapLedger := append([]fakeLedgerRow(nil), f.ledger...)

	if err := fn(&fakeOps{repo: f}); err != nil {
		f.deliveries = snapDeliveries
		f.statuses = snapStatuses
		f.expenses = snapExpenses
		f.ledger = snapLedger
		return err
	}
	return nil
}

type fakeOps struct {
	repo *fakeRepo
}

func (o *fakeOps) fail(method string) error {
	if o.repo.failOn == method {
		return fmt.Errorf("injected %s failure", method)
	}
	return nil
}

func (o *fakeOps) DeliveryDay(_ context.Context, id string) (string, time.Time, error) {
	d, ok := o.repo.deliveries[id]
	if !ok {
		return "", time.Time{}, ErrNotFound
	}
	return d.DriverID, d.DeliveryDate, nil
}

func (o *fakeOps) DeleteDelivery(_ context.Context, id string) error {
	if err := o.fail("DeleteDelivery"); err != nil {
		return err
	}
	delete(o.repo.deliveries, id)
	kept := o.repo.ledger[:0]
	for _, l := range o.repo.ledger {
		if l.DeliveryID != id {
			kept = append(kept, l)
		}
	}
	o.repo.ledger = kept
	return nil
}

func (o *fakeOps) CountDriverDay(_ context.Context, driverID string, day time.Time) (int, error) {
	n := 0
	for _, d := range o.repo.deliveries {
		if d.DriverID == driverID && sameDay(d.DeliveryDate, day) {
			n++
		}
	}
	return n, nil
}

func (o *fakeOps) DriverExists(_ context.Context, id string) (bool, error) {
	return o.repo.drivers[id], nil
}

func (o *fakeOps) DayStatusExists(_ context.Context, driverID string, day time.Time) (bool, error) {
	for _, st := range o.repo.statuses {
		if st.DriverID == driverID && sameDay(st.Date, day) {
			return true, nil
		}
	}
	return false, nil
}

func (o *fakeOps) ReassignDeliveries(_ context.Context, driverID string, day time.Time, newDriverID string) error {
	if err := o.fail("ReassignDeliveries"); err != nil {
		return err
	}
	for id, d := range o.repo.deliveries {
		if d.DriverID == driverID && sameDay(d.DeliveryDate, day) {
			d.DriverID = newDriverID
			o.repo.deliveries[id] = d
		}
	}
	return nil
}

func (o *fakeOps) ReassignExpenses(_ context.Context, driverID string, day time.Time, newDriverID string) error {
	if err := o.fail("ReassignExpenses"); err != nil {
		return err
	}
	for i, e := range o.repo.expenses {
		if e.DriverID == driverID && sameDay(e.Date, day) {
			o.repo.expenses[i].DriverID = newDriverID
		}
	}
	return nil
}

func (o *fakeOps) ReassignDayStatus(_ context.Context, driverID string, day time.Time, newDriverID string) error {
	if err := o.fail("ReassignDayStatus"); err != nil {
		return err
	}
	kept := o.repo.statuses[:0]
	for _, st := range o.repo.statuses {
		if st.DriverID == newDriverID && sameDay(st.Date, day) {
			continue // source row wins
		}
		if st.DriverID == driverID && sameDay(st.Date, day) {
			st.DriverID = newDriverID
		}
		kept = append(kept, st)
	}
	o.repo.statuses = kept
	return nil
}

func (o *fakeOps) ShiftLedgerEntries(_ context.Context, driverID string, day time.Time, shift time.Duration) error {
	if err := o.fail("ShiftLedgerEntries"); err != nil {
		return err
	}
	for i, l := range o.repo.ledger {
		d, ok := o.repo.deliveries[l.DeliveryID]
		if ok && d.DriverID == driverID && sameDay(d.DeliveryDate, day) {
			o.repo.ledger[i].Date = l.Date.Add(shift)
		}
	}
	return nil
}

func (o *fakeOps) ShiftDeliveries(_ context.Context, driverID string, day time.Time, shift time.Duration) error {
	if err := o.fail("ShiftDeliveries"); err != nil {
		return err
	}
	for id, d := range o.repo.deliveries {
		if d.DriverID == driverID && sameDay(d.DeliveryDate, day) {
			d.DeliveryDate = d.DeliveryDate.Add(shift)
			o.repo.deliveries[id] = d
		}
	}
	return nil
}

func (o *fakeOps) ShiftExpenses(_ context.Context, driverID string, day time.Time, shift time.Duration) error {
	if err := o.fail("ShiftExpenses"); err != nil {
		return err
	}
	for i, e := range o.repo.expenses {
		if e.DriverID == driverID && sameDay(e.Date, day) {
			o.repo.expenses[i].Date = e.Date.Add(shift)
		}
	}
	return nil
}

func (o *fakeOps) ShiftDayStatus(_ context.Context, driverID string, day time.Time, shift time.Duration) error {
	if err := o.fail("ShiftDayStatus"); err != nil {
		return err
	}
	for i, st := range o.repo.statuses {
		if st.DriverID == driverID && sameDay(st.Date, day) {
			o.repo.statuses[i].Date = st.Date.Add(shift)
		}
	}
	return nil
}

func (o *fakeOps) DeleteDayLedgerEntries(_ context.Context, driverID string, day time.Time) error {
	if err := o.fail("DeleteDayLedgerEntries"); err != nil {
		return err
	}
	kept := o.repo.ledger[:0]
	for _, l := range o.repo.ledger {
		d, ok := o.repo.deliveries[l.DeliveryID]
		if ok && d.DriverID == driverID && sameDay(d.DeliveryDate, day) {
			continue
		}
		kept = append(kept, l)
	}
	o.repo.ledger = kept
	return nil
}

func (o *fakeOps) DeleteDayDeliveries(_ context.Context, driverID string, day time.Time) error {
	if err := o.fail("DeleteDayDeliveries"); err != nil {
		return err
	}
	for id, d := range o.repo.deliveries {
		if d.DriverID == driverID && sameDay(d.DeliveryDate, day) {
			delete(o.repo.deliveries, id)
		}
	}
	return nil
}

func (o *fakeOps) DeleteDayExpenses(_ context.Context, driverID string, day time.Time) error {
	if err := o.fail("DeleteDayExpenses"); err != nil {
		return err
	}
	kept := o.repo.expenses[:0]
	for _, e := range o.repo.expenses {
		if e.DriverID == driverID && sameDay(e.Date, day) {
			continue
		}
		kept = append(kept, e)
	}
	o.repo.expenses = kept
	return nil
}

func (o *fakeOps) DeleteDayStatus(_ context.Context, driverID string, day time.Time) error {
	if err := o.fail("DeleteDayStatus"); err != nil {
		return err
	}
	kept := o.repo.statuses[:0]
	for _, st := range o.repo.statuses {
		if st.DriverID == driverID && sameDay(st.Date, day) {
			continue
		}
		kept = append(kept, st)
	}
	o.repo.statuses = kept
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.UTC().Format("2006-01-02") == b.UTC().Format("2006-01-02")
}

func validInput() DeliveryInput {
	return DeliveryInput{
		DriverID:     "drv-1",
		ClientID:     "cli-1",
		Amount:       250,
		CashAmount:   100,
		CardAmount:   50,
		Transfer:     40,
		Debt:         60,
		GoodsAmount:  250,
		ExtraPayment: 20,
	}
}

// seedDriverDay loads one driver's day: n deliveries plus a status row and an
// expense for the same date.
func seedDriverDay(repo *fakeRepo, driverID string, day time.Time, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-del-%d", driverID, i)
		repo.deliveries[id] = Delivery{
			ID: id, DriverID: driverID, ClientID: "cli-1",
			Amount: 100, CashAmount: 100, DeliveryDate: day,
		}
		ids = append(ids, id)
	}
	repo.statuses = append(repo.statuses, fakeStatus{DriverID: driverID, Date: day, Status: "PAID_OFF"})
	repo.expenses = append(repo.expenses, fakeExpense{ID: driverID + "-exp", DriverID: driverID, Date: day})
	return ids
}

func TestCreateDelivery(t *testing.T) {
	svc := NewService(newFakeRepo())

	d, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)
	require.InDelta(t, 250, d.Amount, 0.001)
	require.False(t, d.DeliveryDate.IsZero())
}

func TestCreateDeliveryRejectsSplitMismatch(t *testing.T) {
	svc := NewService(newFakeRepo())

	req := validInput()
	req.CashAmount = 200 // 200+50+40+60 != 250

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrSplitMismatch)
	require.ErrorIs(t, err, httpx.ErrUnprocessable)
}

func TestCreateDeliveryAcceptsRoundingNoise(t *testing.T) {
	svc := NewService(newFakeRepo())

	req := validInput()
	req.Amount = 250.004

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestCreateDeliveryWithExplicitDate(t *testing.T) {
	svc := NewService(newFakeRepo())

	date := "2026-03-14"
	req := validInput()
	req.DeliveryDate = &date

	d, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 2026, d.DeliveryDate.Year())
	require.Equal(t, time.March, d.DeliveryDate.Month())
	require.Equal(t, 14, d.DeliveryDate.Day())
}

func TestUpdateDeliveryKeepsDateWhenOmitted(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	date := "2026-03-14"
	req := validInput()
	req.DeliveryDate = &date
	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	upd := validInput()
	upd.CashAmount = 160
	upd.Debt = 0
	updated, err := svc.Update(context.Background(), created.ID, upd)
	require.NoError(t, err)
	require.Equal(t, created.DeliveryDate, updated.DeliveryDate)
	require.InDelta(t, 160, updated.CashAmount, 0.001)
}

func TestUpdateDeliveryUnknownID(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Update(context.Background(), "missing", validInput())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteLastDeliveryRemovesDayRecords(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ids := seedDriverDay(repo, "drv-1", day, 2)

	// One of two deliveries: the status row and expense must stay.
	require.NoError(t, svc.Delete(context.Background(), ids[0]))
	require.Len(t, repo.statuses, 1)
	require.Len(t, repo.expenses, 1)

	// The last one: the day's records go with it.
	require.NoError(t, svc.Delete(context.Background(), ids[1]))
	require.Empty(t, repo.statuses)
	require.Empty(t, repo.expenses)
}

func TestDeleteDeliveryKeepsOtherDriversDay(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ids := seedDriverDay(repo, "drv-1", day, 1)
	seedDriverDay(repo, "drv-2", day, 1)

	require.NoError(t, svc.Delete(context.Background(), ids[0]))
	require.Len(t, repo.statuses, 1)
	require.Equal(t, "drv-2", repo.statuses[0].DriverID)
	require.Len(t, repo.expenses, 1)
	require.Equal(t, "drv-2", repo.expenses[0].DriverID)
}

func TestReassignDayRejectsSameDriver(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	err := svc.ReassignDay(context.Background(), "drv-1", time.Now(), "drv-1")
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Zero(t, repo.txCalls)
}

func TestReassignDayUnknownTargetDriver(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	seedDriverDay(repo, "drv-1", day, 1)

	err := svc.ReassignDay(context.Background(), "drv-1", day, "drv-missing")
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Equal(t, "drv-1", repo.statuses[0].DriverID)
}

func TestReassignDayMovesWholeDay(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ids := seedDriverDay(repo, "drv-1", day, 2)

	require.NoError(t, svc.ReassignDay(context.Background(), "drv-1", day, "drv-2"))
	for _, id := range ids {
		require.Equal(t, "drv-2", repo.deliveries[id].DriverID)
	}
	require.Len(t, repo.statuses, 1)
	require.Equal(t, "drv-2", repo.statuses[0].DriverID)
	require.Equal(t, "drv-2", repo.expenses[0].DriverID)
}

func TestReassignDaySourceStatusWinsOnCollision(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	seedDriverDay(repo, "drv-1", day, 1)
	repo.statuses = append(repo.statuses, fakeStatus{DriverID: "drv-2", Date: day, Status: "PENDING"})

	require.NoError(t, svc.ReassignDay(context.Background(), "drv-1", day, "drv-2"))
	require.Len(t, repo.statuses, 1)
	require.Equal(t, "drv-2", repo.statuses[0].DriverID)
	require.Equal(t, "PAID_OFF", repo.statuses[0].Status)
}

func TestReassignDayRollsBackOnFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ids := seedDriverDay(repo, "drv-1", day, 2)
	repo.failOn = "ReassignExpenses"

	err := svc.ReassignDay(context.Background(), "drv-1", day, "drv-2")
	require.Error(t, err)
	for _, id := range ids {
		require.Equal(t, "drv-1", repo.deliveries[id].DriverID, "failed reassignment must leave no partial state")
	}
	require.Equal(t, "drv-1", repo.statuses[0].DriverID)
	require.Equal(t, "drv-1", repo.expenses[0].DriverID)
}

func TestMoveDaySameDateIsNoop(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	err := svc.MoveDay(context.Background(), "drv-1", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), "2026-03-14")
	require.NoError(t, err)
	require.Zero(t, repo.txCalls)
}

func TestMoveDayInvalidDate(t *testing.T) {
	svc := NewService(newFakeRepo())

	err := svc.MoveDay(context.Background(), "drv-1", time.Now(), "not-a-date")
	require.Error(t, err)
	require.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestMoveDayShiftsAllRecords(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ids := seedDriverDay(repo, "drv-1", day, 1)
	repo.ledger = append(repo.ledger, fakeLedgerRow{ID: "led-1", DeliveryID: ids[0], Date: day})

	require.NoError(t, svc.MoveDay(context.Background(), "drv-1", day, "2026-03-16"))
	require.Equal(t, 16, repo.deliveries[ids[0]].DeliveryDate.Day())
	require.Equal(t, 16, repo.statuses[0].Date.Day())
	require.Equal(t, 16, repo.expenses[0].Date.Day())
	require.Equal(t, 16, repo.ledger[0].Date.Day())
}

func TestMoveDayConflictOnTargetStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ids := seedDriverDay(repo, "drv-1", day, 1)
	target := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	repo.statuses = append(repo.statuses, fakeStatus{DriverID: "drv-1", Date: target, Status: "PENDING"})

	err := svc.MoveDay(context.Background(), "drv-1", day, "2026-03-16")
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Equal(t, 14, repo.deliveries[ids[0]].DeliveryDate.Day(), "conflicting move must leave the day untouched")
}

func TestDeleteDayRemovesAllRecords(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ids := seedDriverDay(repo, "drv-1", day, 2)
	repo.ledger = append(repo.ledger, fakeLedgerRow{ID: "led-1", DeliveryID: ids[0], Date: day})

	require.NoError(t, svc.DeleteDay(context.Background(), "drv-1", day))
	require.Empty(t, repo.deliveries)
	require.Empty(t, repo.statuses)
	require.Empty(t, repo.expenses)
	require.Empty(t, repo.ledger)
}

func TestDeleteDayRollsBackOnFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	seedDriverDay(repo, "drv-1", day, 2)
	repo.failOn = "DeleteDayStatus"

	err := svc.DeleteDay(context.Background(), "drv-1", day)
	require.Error(t, err)
	require.Len(t, repo.deliveries, 2, "failed bulk delete must leave no partial state")
	require.Len(t, repo.statuses, 1)
	require.Len(t, repo.expenses, 1)
}
