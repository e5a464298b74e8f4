// Package dispatcher consumes booking events from RabbitMQ and runs the
// translator fan-out for each one on a bounded worker pool.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tolkbridge/booking-be/shared/rabbitmq"
)

// Engine is the slice of the dispatch engine the worker drives.
type Engine interface {
	DispatchForJob(ctx context.Context, jobID, excludeUserID string) error
}

// Config holds dispatch worker configuration
type Config struct {
	Logger          *slog.Logger
	RabbitClient    *rabbitmq.Client
	Engine          Engine
	Concurrency     int
	DispatchTimeout time.Duration
}

// Worker consumes dispatch events and fans bookings out to translators
type Worker struct {
	logger          *slog.Logger
	rabbitClient    *rabbitmq.Client
	engine          Engine
	concurrency     int
	dispatchTimeout time.Duration
	workerID        string
	jobsChan        chan amqp.Delivery
	stopChan        chan struct{}
	wg              sync.WaitGroup
}

// NewWorker creates a new dispatch worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Worker{
		logger:          cfg.Logger,
		rabbitClient:    cfg.RabbitClient,
		engine:          cfg.Engine,
		concurrency:     concurrency,
		dispatchTimeout: cfg.DispatchTimeout,
		workerID:        fmt.Sprintf("dispatch-%s", uuid.New().String()[:8]),
		jobsChan:        make(chan amqp.Delivery),
		stopChan:        make(chan struct{}),
	}
}

// Start begins consuming dispatch events. Blocks until the context is
// canceled or the broker connection drops.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting dispatch worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("dispatch_timeout", w.dispatchTimeout),
	)

	deliveries, err := w.rabbitClient.Consume(w.workerID)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.runDispatchLoop(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker pool
func (w *Worker) Stop() {
	w.logger.Info("Stopping dispatch worker", slog.String("worker_id", w.workerID))
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Dispatch worker stopped", slog.String("worker_id", w.workerID))
}

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("Worker goroutine started", slog.String("worker_name", workerName))

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case delivery, ok := <-w.jobsChan:
			if !ok {
				w.logger.Info("Worker goroutine stopping - jobsChan closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			w.handleDelivery(ctx, delivery, workerName)
		}
	}
}
