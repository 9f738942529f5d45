package utils

import (
	"fmt"
	"os"
	"strings"

	"go-shop/models"

	"github.com/keighl/postmark"
)

// EmailService sends transactional mail through Postmark.
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService builds an EmailService from POSTMARK_API_TOKEN and
// EMAIL_SENDER. Returns nil when no token is configured; callers treat a nil
// service as "mail disabled".
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		return nil
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

// SendEmail sends a basic email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendPurchaseReceipt mails a summary of the line items just purchased.
func (es *EmailService) SendPurchaseReceipt(toEmail string, entries []models.HistoryEntry) error {
	var total float64
	var lines strings.Builder
	for _, entry := range entries {
		total += entry.Price * float64(entry.Quantity)
		fmt.Fprintf(&lines, "<li>%s x%d @ $%.2f</li>", entry.Name, entry.Quantity, entry.Price)
	}

	htmlContent := fmt.Sprintf(
		"<strong>Thank you for your purchase!</strong><ul>%s</ul>Total: <strong>$%.2f</strong>",
		lines.String(), total,
	)
	return es.SendEmail(toEmail, "Your purchase receipt", htmlContent)
}
