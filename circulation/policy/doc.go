// Package policy holds the circulation rules the engine consults: loan period, renewal limit and
// windows, hold pickup deadline and late fees.
//
// Everything here is a pure function of its arguments, so changing a rule never touches the
// transactional code in the feature handlers.
package policy
