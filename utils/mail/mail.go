package mail

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/shortlet-ng/backend/logger"
)

// dialer returns a configured SMTP dialer, or nil when mail delivery is
// not configured. Notifications are optional and never block a request.
func dialer() *gomail.Dialer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	return gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"))
}

func send(to, subject, body string) {
	d := dialer()
	if d == nil {
		return
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := d.DialAndSend(m); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", to, err)
		return
	}
	logger.InfoLogger.Infof("Email sent to %s: %s", to, subject)
}

// SendBookingConfirmed notifies a guest that their booking was confirmed.
func SendBookingConfirmed(to, propertyTitle, checkIn, checkOut string) {
	body := fmt.Sprintf(
		"<p>Your booking at <strong>%s</strong> has been confirmed.</p><p>Check-in: %s<br>Check-out: %s</p>",
		propertyTitle, checkIn, checkOut,
	)
	send(to, "Booking confirmed", body)
}

// SendPaymentReceipt notifies a guest that their payment was received.
func SendPaymentReceipt(to, reference string, amountKobo int64) {
	body := fmt.Sprintf(
		"<p>We received your payment of <strong>NGN %.2f</strong>.</p><p>Reference: %s</p>",
		float64(amountKobo)/100, reference,
	)
	send(to, "Payment received", body)
}
