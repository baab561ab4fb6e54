package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/policy"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
	"github.com/Agihtaws/OpenShelf-sub001/eventstore/memengine"
	"github.com/Agihtaws/OpenShelf-sub001/testutil/observability/testdoubles"
)

func Test_Engine_EndToEnd_HoldThenDirectCheckoutThenFulfillmentThenReturn(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, _ := givenEngine(t)
	bookID, patronA, patronB := uuid.New(), uuid.New(), uuid.New()
	givenCopies(t, e, bookID, 3)

	// act
	reserved, err := e.Reserve(ctx, patronA, bookID, time.Time{})
	require.NoError(t, err)
	lentToB, err := e.Checkout(ctx, patronB, bookID, 1)
	require.NoError(t, err)
	lentToA, err := e.Checkout(ctx, patronA, bookID, 1)
	require.NoError(t, err)
	returned, err := e.Return(ctx, uuid.MustParse(lentToB.LoanID))
	require.NoError(t, err)

	// assert
	assert.Equal(t, 2, reserved.CopiesAfter)
	assert.Equal(t, 1, lentToB.CopiesAfter)
	assert.Equal(t, 1, lentToA.CopiesBefore)
	assert.Equal(t, 1, lentToA.CopiesAfter, "fulfilling a hold must not decrement again")
	assert.Equal(t, 2, returned.CopiesAfter)

	title, err := e.Title(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, title.AvailableCopies)
	assert.Empty(t, title.Holds)
	require.Len(t, title.Loans, 1)
	assert.Equal(t, patronA.String(), title.Loans[0].PatronID)
	assertInvariant(t, e, bookID)
}

func Test_Engine_HoldToLoanConversion_DecrementsOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, _ := givenEngine(t)
	bookID, patronID := uuid.New(), uuid.New()
	givenCopies(t, e, bookID, 2)

	// act
	_, err := e.Reserve(ctx, patronID, bookID, time.Time{})
	require.NoError(t, err)
	_, err = e.Checkout(ctx, patronID, bookID, 1)
	require.NoError(t, err)

	// assert
	title, err := e.Title(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, title.AvailableCopies)
	assertInvariant(t, e, bookID)
}

func Test_Engine_Return_Twice_IncrementsOnce(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, _ := givenEngine(t)
	bookID, patronID := uuid.New(), uuid.New()
	givenCopies(t, e, bookID, 1)
	lent, err := e.Checkout(ctx, patronID, bookID, 1)
	require.NoError(t, err)
	loanID := uuid.MustParse(lent.LoanID)

	// act
	_, firstErr := e.Return(ctx, loanID)
	_, secondErr := e.Return(ctx, loanID)

	// assert
	require.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, core.ErrLoanNotActive)
	title, err := e.Title(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, title.AvailableCopies)
}

func Test_Engine_ConcurrentReserve_OfLastCopy_ExactlyOneWins(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, _ := givenEngine(t)
	bookID := uuid.New()
	givenCopies(t, e, bookID, 1)

	patrons := []uuid.UUID{uuid.New(), uuid.New()}
	errs := make([]error, len(patrons))

	var wg sync.WaitGroup
	start := make(chan struct{})

	// act
	for i, patronID := range patrons {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = e.Reserve(ctx, patronID, bookID, time.Time{})
		}()
	}
	close(start)
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, core.ErrInsufficientCopies)
	}
	assert.Equal(t, 1, succeeded)

	title, err := e.Title(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, title.AvailableCopies)
	assertInvariant(t, e, bookID)
}

func Test_Engine_ConcurrentCheckouts_NeverOverLend(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, _ := givenEngine(t, engine.WithRetryOptions(shell.WithMaxAttempts(10), shell.WithBaseDelay(time.Millisecond)))
	bookID := uuid.New()
	givenCopies(t, e, bookID, 3)

	const callers = 12
	errs := make([]error, callers)

	var wg sync.WaitGroup

	// act
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.Checkout(ctx, uuid.New(), bookID, 1)
		}()
	}
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, core.ErrInsufficientCopies)
	}
	assert.Equal(t, 3, succeeded)
	assertInvariant(t, e, bookID)
}

func Test_Engine_RenewalCycle(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, clock := givenEngine(t)
	bookID, patronID := uuid.New(), uuid.New()
	givenCopies(t, e, bookID, 1)
	lent, err := e.Checkout(ctx, patronID, bookID, 1)
	require.NoError(t, err)
	loanID := uuid.MustParse(lent.LoanID)
	assert.Equal(t, clock.Now().AddDate(0, 0, 14), lent.DueDate)

	// act
	first, err := e.Renew(ctx, loanID, lent.DueDate.AddDate(0, 0, 10))
	require.NoError(t, err)
	second, err := e.Renew(ctx, loanID, first.DueDate.AddDate(0, 0, 10))
	require.NoError(t, err)
	_, tooFar := e.Renew(ctx, loanID, second.DueDate.AddDate(0, 0, 6))
	third, err := e.Renew(ctx, loanID, second.DueDate.AddDate(0, 0, 5))
	require.NoError(t, err)
	_, fourth := e.Renew(ctx, loanID, third.DueDate.AddDate(0, 0, 1))

	// assert
	assert.Equal(t, 1, first.RenewalCount)
	assert.Equal(t, 2, second.RenewalCount)
	assert.ErrorIs(t, tooFar, core.ErrRenewalWindowExceeded)
	assert.Equal(t, 3, third.RenewalCount)
	assert.Equal(t, lent.DueDate.AddDate(0, 0, 25), third.DueDate)
	assert.ErrorIs(t, fourth, core.ErrRenewalLimitExceeded)

	title, err := e.Title(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, title.AvailableCopies, "renewals never touch the pool")
}

func Test_Engine_Renew_And_Return_UnknownLoan(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, _ := givenEngine(t)

	// act
	_, renewErr := e.Renew(ctx, uuid.New(), time.Time{})
	_, returnErr := e.Return(ctx, uuid.New())

	// assert
	assert.ErrorIs(t, renewErr, core.ErrLoanNotFound)
	assert.ErrorIs(t, returnErr, core.ErrLoanNotFound)
}

func Test_Engine_LateReturn_ChargesFee(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, clock := givenEngine(t)
	bookID, patronID := uuid.New(), uuid.New()
	givenCopies(t, e, bookID, 1)
	lent, err := e.Checkout(ctx, patronID, bookID, 1)
	require.NoError(t, err)
	clock.Advance(16 * 24 * time.Hour)

	// act
	returned, err := e.Return(ctx, uuid.MustParse(lent.LoanID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "0.5", returned.LateFee.String())

	loans, err := e.PatronLoans(ctx, patronID, true)
	require.NoError(t, err)
	assert.Equal(t, "0.5", loans.LateFeesTotal.String())
}

func Test_Engine_Reserve_Rejections(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, clock := givenEngine(t)
	bookID, patronID := uuid.New(), uuid.New()
	givenCopies(t, e, bookID, 2)
	_, err := e.Reserve(ctx, patronID, bookID, time.Time{})
	require.NoError(t, err)

	// act
	_, again := e.Reserve(ctx, patronID, bookID, time.Time{})
	_, pastDeadline := e.Reserve(ctx, uuid.New(), bookID, clock.Now().Add(-time.Minute))
	_, unknownTitle := e.Reserve(ctx, patronID, uuid.New(), time.Time{})

	// assert
	assert.ErrorIs(t, again, core.ErrHoldAlreadyActive)
	assert.ErrorIs(t, pastDeadline, core.ErrInvalidPickupDeadline)
	assert.ErrorIs(t, unknownTitle, core.ErrTitleNotFound)
}

func Test_Engine_CancelHold_PutsCopyBack(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, _ := givenEngine(t)
	bookID, patronID := uuid.New(), uuid.New()
	givenCopies(t, e, bookID, 1)
	_, err := e.Reserve(ctx, patronID, bookID, time.Time{})
	require.NoError(t, err)

	// act
	canceled, err := e.CancelHold(ctx, patronID, bookID)
	_, twice := e.CancelHold(ctx, patronID, bookID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, canceled.CopiesAfter)
	assert.ErrorIs(t, twice, core.ErrHoldNotActive)
}

func Test_Engine_WithdrawCopies_OnlyFromPool(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, _ := givenEngine(t)
	bookID := uuid.New()
	givenCopies(t, e, bookID, 2)
	_, err := e.Checkout(ctx, uuid.New(), bookID, 1)
	require.NoError(t, err)

	// act
	_, tooMany := e.WithdrawCopies(ctx, bookID, 2)
	withdrawn, err := e.WithdrawCopies(ctx, bookID, 1)

	// assert
	assert.ErrorIs(t, tooMany, core.ErrInsufficientCopies)
	require.NoError(t, err)
	assert.Equal(t, 0, withdrawn.CopiesAfter)

	title, err := e.Title(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusUnavailable, title.Status)
	assert.Equal(t, 1, title.TotalAcquired)
	assertInvariant(t, e, bookID)
}

func Test_Engine_SweepExpiredHolds(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, clock := givenEngine(t)
	bookA, bookB := uuid.New(), uuid.New()
	patronA, patronB, patronC := uuid.New(), uuid.New(), uuid.New()
	givenCopies(t, e, bookA, 1)
	givenCopies(t, e, bookB, 2)
	_, err := e.Reserve(ctx, patronA, bookA, time.Time{})
	require.NoError(t, err)
	_, err = e.Reserve(ctx, patronB, bookB, time.Time{})
	require.NoError(t, err)
	_, err = e.Reserve(ctx, patronC, bookB, clock.Now().Add(30*24*time.Hour))
	require.NoError(t, err)
	clock.Advance(8 * 24 * time.Hour)

	// act
	report, err := e.SweepExpiredHolds(ctx)

	// assert
	require.NoError(t, err)
	assert.Equal(t, engine.SweepReport{Found: 2, Expired: 2}, report)

	titleA, err := e.Title(ctx, bookA)
	require.NoError(t, err)
	assert.Equal(t, 1, titleA.AvailableCopies)

	titleB, err := e.Title(ctx, bookB)
	require.NoError(t, err)
	assert.Equal(t, 1, titleB.AvailableCopies)
	require.Len(t, titleB.Holds, 1)
	assert.Equal(t, patronC.String(), titleB.Holds[0].PatronID)

	again, err := e.SweepExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Found)
}

func Test_Engine_Checkout_ExpiresOwnLapsedHold(t *testing.T) {
	// arrange
	ctx := context.Background()
	e, clock := givenEngine(t)
	bookID, patronID := uuid.New(), uuid.New()
	givenCopies(t, e, bookID, 2)
	_, err := e.Reserve(ctx, patronID, bookID, time.Time{})
	require.NoError(t, err)
	clock.Advance(8 * 24 * time.Hour)

	// act
	lent, err := e.Checkout(ctx, patronID, bookID, 1)

	// assert
	require.NoError(t, err)
	assert.True(t, lent.ExpiredHold)
	assert.Equal(t, 1, lent.CopiesBefore)
	assert.Equal(t, 1, lent.CopiesAfter, "expired hold returns one copy, the loan takes one")
	assertInvariant(t, e, bookID)
}

func Test_Engine_Collaborators_ReceiveCommittedOperations(t *testing.T) {
	// arrange
	ctx := engine.ContextWithActor(context.Background(), "staff-7")
	notifier, auditLog := &notifierSpy{}, &auditLogSpy{}
	e, _ := givenEngine(t, engine.WithNotifier(notifier), engine.WithAuditLog(auditLog))
	bookID, patronID := uuid.New(), uuid.New()
	givenCopies(t, e, bookID, 1)

	// act
	lent, err := e.Checkout(ctx, patronID, bookID, 1)
	require.NoError(t, err)
	_, rejected := e.Checkout(ctx, patronID, bookID, 1)
	require.NoError(t, e.Close(context.Background()))

	// assert
	assert.ErrorIs(t, rejected, core.ErrInsufficientCopies)

	records := auditLog.Records()
	require.Len(t, records, 2, "acquisition and checkout, never the rejection")
	assert.Equal(t, engine.OperationCheckout, records[1].Operation)
	assert.Equal(t, "staff-7", records[1].ActorID)
	assert.Equal(t, 1, records[1].CopiesBefore)
	assert.Equal(t, 0, records[1].CopiesAfter)

	notifications := notifier.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, engine.NotificationCheckedOut, notifications[0].Kind)
	assert.Equal(t, lent.LoanID, notifications[0].LoanID)
	assert.Equal(t, lent.DueDate, notifications[0].DueDate)
}

func Test_Engine_Observability_RecordsRejections(t *testing.T) {
	// arrange
	ctx := context.Background()
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	e, _ := givenEngine(t, engine.WithMetrics(metrics))
	bookID := uuid.New()
	givenCopies(t, e, bookID, 1)

	// act
	_, err := e.WithdrawCopies(ctx, bookID, 5)

	// assert
	assert.ErrorIs(t, err, core.ErrInsufficientCopies)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerRejectedMetric, map[string]string{
		shell.LogAttrCommandType: "WithdrawCopies",
	}))
}

func Test_New_RejectsInvalidPolicy(t *testing.T) {
	p := policy.Default()
	p.LoanPeriod = 0

	_, err := engine.New(memengine.NewEventStore(), engine.WithPolicy(p))

	assert.ErrorIs(t, err, policy.ErrNonPositiveLoanPeriod)
}

/*** test fixtures ***/

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type notifierSpy struct {
	mu            sync.Mutex
	notifications []engine.Notification
}

func (s *notifierSpy) Notify(_ context.Context, notification engine.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = append(s.notifications, notification)

	return nil
}

func (s *notifierSpy) Notifications() []engine.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]engine.Notification(nil), s.notifications...)
}

type auditLogSpy struct {
	mu      sync.Mutex
	records []engine.AuditRecord
}

func (s *auditLogSpy) Record(_ context.Context, record engine.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)

	return nil
}

func (s *auditLogSpy) Records() []engine.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]engine.AuditRecord(nil), s.records...)
}

func givenEngine(t *testing.T, opts ...engine.Option) (*engine.Engine, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	opts = append([]engine.Option{engine.WithClock(clock.Now), engine.WithDispatch(64, 1)}, opts...)

	e, err := engine.New(memengine.NewEventStore(), opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = e.Close(context.Background())
	})

	return e, clock
}

func givenCopies(t *testing.T, e *engine.Engine, bookID uuid.UUID, quantity int) {
	t.Helper()

	_, err := e.AcquireCopies(context.Background(), bookID, "A Wizard of Earthsea", "9780547773742", quantity)
	require.NoError(t, err)
}

func assertInvariant(t *testing.T, e *engine.Engine, bookID uuid.UUID) {
	t.Helper()

	title, err := e.Title(context.Background(), bookID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, title.AvailableCopies, 0)
	assert.Equal(t, title.TotalAcquired, title.AvailableCopies+title.HeldUnits+title.LentUnits)
}
