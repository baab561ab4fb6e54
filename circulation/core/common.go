package core

import (
	"time"
)

// BookIDString identifies a title (the catalog record), not a physical copy.
type BookIDString = string

// PatronIDString identifies a patron.
type PatronIDString = string

// LoanIDString identifies a loan.
type LoanIDString = string

// ISBNString is an ISBN.
type ISBNString = string

// OccurredAtTS is when an event occurred.
type OccurredAtTS = time.Time

// ToOccurredAt normalizes t to UTC with microsecond precision, which is what PostgreSQL stores.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}
