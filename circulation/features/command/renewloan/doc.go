// Package renewloan implements Renew: moving an active loan's due date within the renewal window.
package renewloan
