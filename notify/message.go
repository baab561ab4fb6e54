package notify

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
)

var (
	// ErrEncodingNotificationFailed is returned when a notification cannot be marshaled.
	ErrEncodingNotificationFailed = errors.New("encoding notification failed")

	// ErrPublishingNotificationFailed is returned when Redis refuses the PUBLISH.
	ErrPublishingNotificationFailed = errors.New("publishing notification failed")

	// ErrEnqueuingNotificationFailed is returned when the outbox cannot store a notification.
	ErrEnqueuingNotificationFailed = errors.New("enqueuing notification failed")
)

// Message is the wire format of a notification.
type Message struct {
	Kind       string     `json:"kind"`
	PatronID   string     `json:"patron_id"`
	BookID     string     `json:"book_id"`
	LoanID     string     `json:"loan_id,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	PickupBy   *time.Time `json:"pickup_by,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// MessageFrom converts a notification to its wire format. Zero dates are left out.
func MessageFrom(n engine.Notification) Message {
	return Message{
		Kind:       string(n.Kind),
		PatronID:   n.PatronID,
		BookID:     n.BookID,
		LoanID:     n.LoanID,
		DueDate:    optionalTime(n.DueDate),
		PickupBy:   optionalTime(n.PickupBy),
		OccurredAt: n.OccurredAt,
	}
}

// Notification converts the wire format back.
func (m Message) Notification() engine.Notification {
	n := engine.Notification{
		Kind:       engine.NotificationKind(m.Kind),
		PatronID:   m.PatronID,
		BookID:     m.BookID,
		LoanID:     m.LoanID,
		OccurredAt: m.OccurredAt,
	}

	if m.DueDate != nil {
		n.DueDate = *m.DueDate
	}

	if m.PickupBy != nil {
		n.PickupBy = *m.PickupBy
	}

	return n
}

func encode(n engine.Notification) ([]byte, error) {
	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(MessageFrom(n))
	if err != nil {
		return nil, errors.Join(ErrEncodingNotificationFailed, err)
	}

	return payload, nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
