// Package reservecopy implements Reserve: a patron places a hold on a title, which takes one copy
// out of the lendable pool until the patron picks it up, cancels, or the pickup deadline lapses.
//
// The availability check runs on the title's state as read inside the conditional append, so of
// two patrons racing for the last copy exactly one gets the hold.
package reservecopy
