package notify

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"github.com/mikestefanello/backlite"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/engine"
	"github.com/Agihtaws/OpenShelf-sub001/circulation/shell"
)

const (
	outboxQueueName   = "circulation_notifications"
	outboxMaxAttempts = 8
	outboxBackoff     = 30 * time.Second
	outboxTimeout     = 30 * time.Second
	outboxRetention   = 24 * time.Hour
)

var (
	// ErrOpeningOutboxFailed is returned when the SQLite database cannot be opened or prepared.
	ErrOpeningOutboxFailed = errors.New("opening notification outbox failed")

	// ErrNilDelivery is returned by NewOutbox without a downstream notifier.
	ErrNilDelivery = errors.New("outbox delivery notifier must not be nil")
)

// OutboxConfig configures the durable queue.
type OutboxConfig struct {
	// Path of the SQLite database file.
	Path            string
	Workers         int
	ReleaseAfter    time.Duration
	CleanupInterval time.Duration
}

// notificationTask is the backlite task stored per notification.
type notificationTask struct {
	Message Message `json:"message"`
}

// Config returns the queue configuration for notification tasks.
func (notificationTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        outboxQueueName,
		MaxAttempts: outboxMaxAttempts,
		Backoff:     outboxBackoff,
		Timeout:     outboxTimeout,
		Retention: &backlite.Retention{
			Duration:   outboxRetention,
			OnlyFailed: true,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Outbox is an engine.Notifier that stores notifications in SQLite and forwards them to delivery
// from a worker pool, retrying with backoff.
type Outbox struct {
	client *backlite.Client
	db     *sql.DB
}

// NewOutbox opens (and if needed creates) the outbox database and registers the delivery queue.
// Call Start to begin forwarding.
func NewOutbox(cfg OutboxConfig, delivery engine.Notifier, logger shell.Logger) (*Outbox, error) {
	if delivery == nil {
		return nil, ErrNilDelivery
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Join(ErrOpeningOutboxFailed, err)
	}

	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	var taskLogger backlite.Logger = discardLogger{}
	if logger != nil {
		taskLogger = logger
	}

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          taskLogger,
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningOutboxFailed, err)
	}

	if err := client.Install(); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningOutboxFailed, err)
	}

	client.Register(backlite.NewQueue(func(ctx context.Context, task notificationTask) error {
		return delivery.Notify(ctx, task.Message.Notification())
	}))

	return &Outbox{client: client, db: db}, nil
}

// Notify stores the notification. It returns once the task is durable, not once it is delivered.
func (o *Outbox) Notify(_ context.Context, notification engine.Notification) error {
	if _, err := o.client.Add(notificationTask{Message: MessageFrom(notification)}).Save(); err != nil {
		return errors.Join(ErrEnqueuingNotificationFailed, err)
	}

	return nil
}

// Start begins forwarding from the worker pool until Stop is called or ctx ends.
func (o *Outbox) Start(ctx context.Context) {
	o.client.Start(ctx)
}

// Stop waits for in-flight deliveries. It returns false if ctx ended first.
func (o *Outbox) Stop(ctx context.Context) bool {
	return o.client.Stop(ctx)
}

// Close releases the database. Call it after Stop.
func (o *Outbox) Close() error {
	return o.db.Close()
}

type discardLogger struct{}

func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
