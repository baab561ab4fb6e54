// Package patronloans implements the Patron Loans query: every loan of one patron across all
// titles with its derived status label and the late fees charged on returned loans.
package patronloans
