package dispatcher

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// runDispatchLoop forwards broker deliveries to the worker pool. Returns
// when the context is canceled or the delivery channel closes.
func (w *Worker) runDispatchLoop(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Dispatch loop started", slog.String("worker_id", w.workerID))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Dispatch loop stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			select {
			case w.jobsChan <- delivery:
				w.logger.Debug("Delivery handed to worker pool",
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
					slog.String("routing_key", delivery.RoutingKey),
				)
			case <-ctx.Done():
				w.logger.Info("Dispatch loop stopped while handing off delivery")
				// NACK the message so it can be reprocessed
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}
