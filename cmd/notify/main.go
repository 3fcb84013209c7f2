package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/config"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/events"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/notify"
	"github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * create logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * load config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		return
	}
	if cfg.RabbitMQ.DSN == "" {
		logger.Error("RABBITMQ_DSN is not set")
		return
	}
	if len(cfg.Email.Planners) == 0 {
		logger.Error("EMAIL_PLANNERS is not set")
		return
	}

	/**********************************************
	 * create mail client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// make sure the SMTP server is reachable
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("failed to connect to SMTP server", slog.String("error", err.Error()))
		return
	}

	mailer := notify.NewMailer(client, cfg.Email.SMTP.Username, cfg.Email.Planners)

	/**********************************************
	 * connect RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// open channel
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// declare queue
	q, err := events.DeclareQueue(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Error("failed to declare queue", slog.String("error", err.Error()))
		return
	}

	// listen for CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// consume messages
	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer tag, empty lets RabbitMQ pick one
		false,  // manual ack
		false,  // exclusive
		false,  // no-local, unsupported by RabbitMQ
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		logger.Error("failed to consume messages", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// cancels the consumer goroutine
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("RabbitMQ channel closed")
					return
				}

				event, err := events.Decode(msg)
				if err != nil {
					// a malformed message will never parse, drop it
					logger.Error("failed to decode commit event", slog.String("message_id", msg.MessageId), slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				logger.Info("received commit event", slog.String("session_id", event.SessionID), slog.Int64("version", event.NewVersion))

				sendCtx, sendCancel := context.WithTimeout(ctx, time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
				err = mailer.Send(sendCtx, event)
				sendCancel()
				if err != nil {
					logger.Error("failed to send mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // requeue
					continue
				}

				// ack
				_ = msg.Ack(false)
			}
		}
	}()

	// wait for CTRL+C
	logger.Info("waiting for commit events... (CTRL+C to quit)")
	<-sigChan

	// graceful shutdown
	slog.Info("stopping notify worker...")
	cancel()
	wg.Wait() // wait for the consumer to finish
	slog.Info("notify worker stopped")
}
