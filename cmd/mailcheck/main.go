// Command mailcheck verifies the configured email provider by sending a test
// message. For SMTP the server handshake is checked first.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/foodiehub-backend/internal/config"
	"github.com/your-org/foodiehub-backend/internal/pkg/email"
	"github.com/your-org/foodiehub-backend/internal/pkg/logger"
)

func main() {
	to := flag.String("to", "", "recipient of the test email")
	flag.Parse()
	if *to == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(cfg.Logging)

	sender, err := email.NewSender(cfg.External.Email, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create email sender")
	}

	if smtpSender, ok := sender.(*email.SMTPSender); ok {
		if err := smtpSender.CheckConnection(); err != nil {
			log.WithError(err).Fatal("SMTP check failed")
		}
		log.Info("SMTP connection verified")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg := &email.Email{
		To:          []string{*to},
		Subject:     "Test email from " + cfg.App.Name,
		HTMLContent: "<h1>It works</h1><p>Your email provider is configured correctly.</p>",
		Type:        email.EmailTypeTest,
	}
	if err := sender.Send(ctx, msg); err != nil {
		log.WithError(err).Fatal("Send failed")
	}

	log.WithFields(logrus.Fields{
		"provider": cfg.External.Email.Provider,
		"to":       *to,
	}).Info("Test email sent")
}
