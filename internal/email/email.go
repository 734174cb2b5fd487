package email

import (
	"context"
	"fmt"
	"os"

	"github.com/travelwithsue/travelapi/config"
	"github.com/travelwithsue/travelapi/internal/kafka"
	"gopkg.in/gomail.v2"
)

// Sender delivers booking confirmation emails with the QR code attached.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", event.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Booking %s confirmed - flight %s", event.Reference, event.FlightNumber))
	msg.SetBody("text/plain", plainBody(event))
	msg.AddAlternative("text/html", htmlBody(event))

	if event.QRCodePath != "" {
		if _, err := os.Stat(event.QRCodePath); err == nil {
			msg.Attach(event.QRCodePath)
		}
	}

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send confirmation for %s: %w", event.Reference, err)
	}
	return nil
}

func plainBody(event kafka.BookingEvent) string {
	return fmt.Sprintf("Hi %s,\n\nYour booking %s for flight %s (%s) is confirmed for %d ticket(s).\nPresent the attached QR code at check-in.\n",
		event.Name, event.Reference, event.FlightNumber, event.Airline, event.Tickets)
}

func htmlBody(event kafka.BookingEvent) string {
	return fmt.Sprintf("<p>Hi %s,</p><p>Your booking <b>%s</b> for flight <b>%s</b> (%s) is confirmed for %d ticket(s).</p><p>Present the attached QR code at check-in.</p>",
		event.Name, event.Reference, event.FlightNumber, event.Airline, event.Tickets)
}
