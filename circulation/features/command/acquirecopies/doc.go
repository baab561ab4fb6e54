// Package acquirecopies adds physical copies of a title to the lendable pool, creating the
// catalog record on the first acquisition.
package acquirecopies
