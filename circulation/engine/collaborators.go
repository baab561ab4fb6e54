package engine

import (
	"context"
	"time"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

// Operation names a committed engine operation in audit records.
type Operation string

const (
	OperationAcquireCopies  Operation = "AcquireCopies"
	OperationWithdrawCopies Operation = "WithdrawCopies"
	OperationReserve        Operation = "Reserve"
	OperationCancelHold     Operation = "CancelHold"
	OperationCheckout       Operation = "Checkout"
	OperationRenew          Operation = "Renew"
	OperationReturn         Operation = "Return"
	OperationExpireHold     Operation = "ExpireHold"
)

// NotificationKind tells the notification collaborator what to tell the patron.
type NotificationKind string

const (
	NotificationHoldPlaced  NotificationKind = "hold_placed"
	NotificationCheckedOut  NotificationKind = "checked_out"
	NotificationReturned    NotificationKind = "returned"
	NotificationHoldExpired NotificationKind = "hold_expired"
)

// AuditRecord is the fire-and-forget trace of one committed operation.
type AuditRecord struct {
	Operation    Operation
	ActorID      shell.ActorID
	BookID       core.BookIDString
	PatronID     core.PatronIDString
	LoanID       core.LoanIDString
	CopiesBefore int
	CopiesAfter  int
	OccurredAt   time.Time
}

// Notification is sent out-of-band after Reserve, Checkout, Return and hold expiry commits.
type Notification struct {
	Kind       NotificationKind
	PatronID   core.PatronIDString
	BookID     core.BookIDString
	LoanID     core.LoanIDString
	DueDate    time.Time
	PickupBy   time.Time
	OccurredAt time.Time
}

// Notifier delivers notifications, e.g. by email. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// AuditLog persists audit records. Implementations must be safe for concurrent use.
type AuditLog interface {
	Record(ctx context.Context, record AuditRecord) error
}

func auditRecordFrom(operation Operation, actorID shell.ActorID, receipt Receipt) AuditRecord {
	return AuditRecord{
		Operation:    operation,
		ActorID:      actorID,
		BookID:       receipt.BookID,
		PatronID:     receipt.PatronID,
		LoanID:       receipt.LoanID,
		CopiesBefore: receipt.CopiesBefore,
		CopiesAfter:  receipt.CopiesAfter,
		OccurredAt:   receipt.OccurredAt,
	}
}

// notificationFor returns false for operations the patron is not notified about.
func notificationFor(operation Operation, receipt Receipt) (Notification, bool) {
	var kind NotificationKind

	switch operation {
	case OperationReserve:
		kind = NotificationHoldPlaced
	case OperationCheckout:
		kind = NotificationCheckedOut
	case OperationReturn:
		kind = NotificationReturned
	case OperationExpireHold:
		kind = NotificationHoldExpired
	default:
		return Notification{}, false
	}

	return Notification{
		Kind:       kind,
		PatronID:   receipt.PatronID,
		BookID:     receipt.BookID,
		LoanID:     receipt.LoanID,
		DueDate:    receipt.DueDate,
		PickupBy:   receipt.PickupBy,
		OccurredAt: receipt.OccurredAt,
	}, true
}
