package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"videocourse"
	"videocourse/internal/queue"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	videocourse.SetVerbose(*verbose)
	logger := videocourse.Logger().Named("worker")

	cfg, err := videocourse.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	course, kv, err := videocourse.BuildCourse(ctx, cfg)
	if err != nil {
		logger.Error("failed to build course pipeline", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	logger.Info("connecting to RabbitMQ")
	producer, err := queue.NewRabbitMQProducer(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to create producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	consumer, err := queue.NewRabbitMQConsumer(cfg.RabbitMQURL, videocourse.PrewarmCommandQueue, logger)
	if err != nil {
		logger.Error("failed to create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	msgs, err := consumer.StartConsuming()
	if err != nil {
		logger.Error("failed to start consuming", "error", err)
		os.Exit(1)
	}

	processor := videocourse.NewPrewarmProcessor(course, producer)

	logger.Info("worker started", "queue", videocourse.PrewarmCommandQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			logger.Debug("received prewarm command", "bytes", len(d.Body))
			if err := processor.ProcessMessage(ctx, d.Body); err != nil {
				logger.Error("failed to process prewarm command", "error", err)
				if err := d.Nack(false, true); err != nil {
					logger.Error("failed to nack delivery", "error", err)
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				logger.Error("failed to ack delivery", "error", err)
			}
		}
	}
}
