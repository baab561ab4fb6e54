// Package sweeper runs the engine's hold sweep on a cron schedule.
//
// When several circulationd instances share one event store, give each Sweeper the same
// RedisLocker: only the instance that obtains the lock sweeps, the others skip that tick.
// Holds expired twice are harmless anyway, since the second ExpireHold is rejected and counted
// as skipped, so the lock only saves work.
package sweeper
