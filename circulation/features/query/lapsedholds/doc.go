// Package lapsedholds implements the Lapsed Holds query: all active holds whose pickup deadline
// has passed. The hold sweeper expires what it returns.
package lapsedholds
