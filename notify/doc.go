// Package notify delivers the engine's patron notifications out-of-band.
//
// RedisPublisher publishes each notification as JSON on a Redis channel, where the email and
// in-app delivery services subscribe. Outbox puts a durable SQLite-backed queue in front of any
// engine.Notifier, so notifications survive a restart and failed deliveries are retried.
package notify
