// Package returnloan implements Return: closing an active loan and putting its copies back into the pool.
//
// Returning after the due date charges the policy's late fee, which is recorded on the event.
// Collecting it is left to the payment collaborator.
package returnloan
