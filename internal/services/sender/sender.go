// Package services отправляет клиентам письма о подтверждении абонемента.
package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/club-checkout/internal/lib/sl"
	"github.com/magabrotheeeer/club-checkout/internal/lib/smtp"
	"github.com/magabrotheeeer/club-checkout/internal/models"
)

// SenderService отправляет письма через SMTP транспорт.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendConfirmation отправляет клиенту подтверждение оплаченного абонемента.
func (s *SenderService) SendConfirmation(order models.StoredOrder, invoiceNumber string) error {
	const op = "services.sender.SendConfirmation"
	c := order.Customer

	subject := fmt.Sprintf("Your %s membership at %s is confirmed", order.Plan.Name, order.Club.Name)
	lines := []string{
		fmt.Sprintf("Hello %s,", c.FirstName),
		"",
		"thank you for joining us. Your payment has been received.",
		"",
		fmt.Sprintf("Club: %s", order.Club.Name),
		fmt.Sprintf("Plan: %s (%d months)", order.Plan.Name, order.Plan.Duration),
		fmt.Sprintf("Start date: %s", order.Subscription.StartDate),
		fmt.Sprintf("End date: %s", order.Subscription.EndDate),
		fmt.Sprintf("Total paid: EUR %.2f", order.Plan.Price),
	}
	if invoiceNumber != "" {
		lines = append(lines, fmt.Sprintf("Invoice: %s", invoiceNumber))
	}
	lines = append(lines, "", "You can now sign in to the mobile app with your email address.")

	if err := s.sendEmail([]string{c.Email}, subject, strings.Join(lines, "\r\n")); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.Sender()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Debug("smtp client close", sl.Err(err))
		}
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
