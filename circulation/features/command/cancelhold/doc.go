// Package cancelhold implements CancelHold: the patron gives up an active hold and its copy
// returns to the lendable pool. Canceling a hold that is no longer active is rejected instead of
// returning the copy a second time.
package cancelhold
