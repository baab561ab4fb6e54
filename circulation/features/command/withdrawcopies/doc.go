// Package withdrawcopies removes lost or damaged copies from a title. Only copies currently in
// the pool can be withdrawn; held and lent units stay untouched.
package withdrawcopies
