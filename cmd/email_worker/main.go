package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rakapratama/go-admin-backend/config"
	userapp "github.com/rakapratama/go-admin-backend/internal/application"
	pginfra "github.com/rakapratama/go-admin-backend/internal/infrastructure/postgres"
	"github.com/rakapratama/go-admin-backend/pkg/helpers"
	"github.com/rakapratama/go-admin-backend/pkg/mailer"
	mailtpl "github.com/rakapratama/go-admin-backend/pkg/mailer/templates"
)

// The worker consumes email jobs off RabbitMQ, renders their template
// and sends through Mailgun. A job that fails once is requeued; a job
// that fails again is recorded in failed_jobs and dropped.
func main() {
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		log.Println("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		log.Fatal("Mailgun not configured")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	jobs := userapp.NewJobService(pginfra.NewFailedJobRepository(pool), logger)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQEmailQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			handleMessage(ctx, cfg, mg, jobs, msg)
		}
		close(done)
	}()

	log.Printf("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-stop
	log.Printf("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func handleMessage(ctx context.Context, cfg *config.Config, mg *mailer.Mailgun, jobs *userapp.JobService, msg amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		log.Printf("bad message: %v", err)
		recordFailure(ctx, cfg, jobs, msg, err)
		_ = msg.Ack(false)
		return
	}

	subject := job.Subject
	text := job.Text
	html := job.HTML

	if job.Template != "" {
		s, t, h, rerr := mailtpl.Render(job.Template, mailtpl.FromMap(job.Data))
		if rerr != nil {
			log.Printf("render %s failed: %v", job.Template, rerr)
			failOrRequeue(ctx, cfg, jobs, msg, rerr)
			return
		}
		if subject == "" {
			subject = s
		}
		text, html = t, h
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	err := mg.Send(c, job.To, subject, text, html)
	cancel()
	if err != nil {
		log.Printf("send failed: %v", err)
		failOrRequeue(ctx, cfg, jobs, msg, err)
		return
	}
	_ = msg.Ack(false)
}

// failOrRequeue gives a message one retry. The second failure goes to
// the failed_jobs table instead of cycling forever.
func failOrRequeue(ctx context.Context, cfg *config.Config, jobs *userapp.JobService, msg amqp.Delivery, cause error) {
	if !msg.Redelivered {
		_ = msg.Nack(false, true)
		return
	}
	recordFailure(ctx, cfg, jobs, msg, cause)
	_ = msg.Ack(false)
}

func recordFailure(ctx context.Context, cfg *config.Config, jobs *userapp.JobService, msg amqp.Delivery, cause error) {
	if err := jobs.RecordFailure(ctx, cfg.RabbitMQEmailQueue, msg.Body, cause); err != nil {
		log.Printf("failed to record failed job: %v", err)
	}
}
