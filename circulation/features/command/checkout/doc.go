// Package checkout implements Checkout in both forms: a direct checkout that takes Quantity
// copies from the pool, and the fulfillment of the patron's active hold, where the held unit
// converts into the loan without leaving the pool a second time.
package checkout
