package notification

import (
	"context"
	"fmt"
	"html"

	"fixerhub/models"
	"fixerhub/utils"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender returns nil when apiKey is empty; callers fall back to logging.
func NewResendSender(apiKey, from string) *ResendSender {
	if apiKey == "" {
		return nil
	}
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, p models.EmailPayload) error {
	if s == nil {
		utils.GetLogger().Info("email disabled, dropping message", zap.String("to", p.To), zap.String("subject", p.Subject))
		return nil
	}
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{p.To},
		Subject: p.Subject,
		Html:    p.HTML,
	})
	if err != nil {
		return fmt.Errorf("email: send to %s failed: %w", p.To, err)
	}
	utils.GetLogger().Debug("email sent", zap.String("id", sent.Id), zap.String("to", p.To))
	return nil
}

func layout(title, body, link, linkText string) string {
	button := ""
	if link != "" {
		button = fmt.Sprintf(`<p><a href="%s" style="background:#2563eb;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">%s</a></p>`,
			html.EscapeString(link), html.EscapeString(linkText))
	}
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:560px"><h2>%s</h2><p>%s</p>%s<p style="color:#888">FixerHub</p></div>`,
		html.EscapeString(title), html.EscapeString(body), button)
}

func VerificationEmail(to, name, link string) models.EmailPayload {
	return models.EmailPayload{
		To:      to,
		Subject: "Verify your FixerHub email",
		HTML:    layout("Welcome, "+name, "Confirm your email address to start booking and offering services.", link, "Verify email"),
	}
}

func PasswordResetEmail(to, link string) models.EmailPayload {
	return models.EmailPayload{
		To:      to,
		Subject: "Reset your FixerHub password",
		HTML:    layout("Password reset", "Use the link below within one hour to choose a new password. Ignore this email if you did not ask for it.", link, "Reset password"),
	}
}

func BookingUpdateEmail(to, bookingID string, status models.BookingStatus, link string) models.EmailPayload {
	return models.EmailPayload{
		To:      to,
		Subject: fmt.Sprintf("Booking %s is now %s", bookingID, status),
		HTML:    layout("Booking update", fmt.Sprintf("Your booking %s moved to %s.", bookingID, status), link, "View booking"),
	}
}

func InvoiceEmail(to string, inv *models.Invoice) models.EmailPayload {
	return models.EmailPayload{
		To:      to,
		Subject: "Your FixerHub invoice " + inv.InvoiceNumber,
		HTML:    layout("Payment received", fmt.Sprintf("Invoice %s for %s %.2f was issued on %s.", inv.InvoiceNumber, inv.Currency, inv.Amount, inv.IssuedAt.Format("2 Jan 2006")), "", ""),
	}
}

func CertificationReviewedEmail(to, title string, status models.CertificationStatus, reason string) models.EmailPayload {
	body := fmt.Sprintf("Your certification %q was %s.", title, status)
	if reason != "" {
		body += " Reason: " + reason
	}
	return models.EmailPayload{
		To:      to,
		Subject: "Certification " + string(status),
		HTML:    layout("Certification review", body, "", ""),
	}
}

func DisputeResolvedEmail(to, title, resolution string) models.EmailPayload {
	return models.EmailPayload{
		To:      to,
		Subject: "Dispute resolved: " + title,
		HTML:    layout("Dispute resolved", resolution, "", ""),
	}
}
