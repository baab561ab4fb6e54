// Package expirehold expires a single hold whose pickup deadline has passed and puts its unit back into the pool.
package expirehold
