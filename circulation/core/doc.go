// Package core holds the circulation domain: the events recorded for a title, the
// TitleState projection folded from them and the domain errors.
//
// Nothing in here performs I/O. The feature packages decide on a TitleState and
// the shell package persists the resulting events.
package core
