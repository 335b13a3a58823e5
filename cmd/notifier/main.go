package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/internal/notify"
	"github.com/STAYCALM1234/mabest-alum/pkg/events"
	applogger "github.com/STAYCALM1234/mabest-alum/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("ALUMNI_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("component", "notifier"))

	if !cfg.Events.Enabled() {
		logger.Fatal("events.brokers must be set for the notifier")
	}
	if cfg.Mail.SMTPHost == "" || cfg.Mail.From == "" {
		logger.Fatal("mail.smtp_host and mail.from must be set for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := events.NewConsumer(&cfg.Events, logger)
	defer consumer.Close()

	n := notify.NewNotifier(notify.NewSMTPSender(&cfg.Mail), &cfg.Mail, logger)

	logger.Info("listening for approval events",
		zap.Strings("brokers", cfg.Events.Brokers),
		zap.String("topic", cfg.Events.ApprovalTopic),
		zap.String("group", cfg.Events.GroupID),
	)
	if err := consumer.Listen(ctx, n.HandleApproval); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
	}
	logger.Info("stopped")
}
