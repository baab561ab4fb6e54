// Package titleinventory implements the Title Inventory query: the catalog record of one title
// with its derived status, the copy ledger breakdown, and its active holds and loans.
//
// This is a read-only projection of the title's consistency boundary. Status and the overdue
// label are computed at query time and never stored.
package titleinventory
