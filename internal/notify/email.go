package notify

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/store"
	"ai-market-poster/internal/trace"
	"ai-market-poster/internal/types"
)

// EmailNotifier sends a notification mail after each generated post.
// Delivery is best-effort: the caller logs and continues on failure.
type EmailNotifier struct {
	dialer    *gomail.Dialer
	sender    string
	recipient string
}

// NewEmailNotifier builds a notifier from SMTP credentials.
func NewEmailNotifier(creds store.Credentials) *EmailNotifier {
	return &EmailNotifier{
		dialer:    gomail.NewDialer(creds.SMTPServer, creds.SMTPPort, creds.EmailSender, creds.EmailPassword),
		sender:    creds.EmailSender,
		recipient: creds.EmailRecipient,
	}
}

// Send delivers the notification, attaching the image when given.
func (n *EmailNotifier) Send(ctx context.Context, subject, body, attachmentPath string) error {
	ctx, span := trace.StartSpan(ctx, "notify.SendEmail")
	defer span.End()

	m := gomail.NewMessage()
	m.SetHeader("From", n.sender)
	m.SetHeader("To", n.recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	if attachmentPath != "" {
		m.Attach(attachmentPath)
	}

	if err := n.dialer.DialAndSend(m); err != nil {
		logger.ErrorWithErr(ctx, "Failed to send notification email", err, "recipient", n.recipient)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info(ctx, "Notification email sent",
		"recipient", n.recipient,
		"subject", subject,
		"withAttachment", attachmentPath != "",
	)
	return nil
}

// Subject builds the standard notification subject for a post title.
func Subject(title string) string {
	return fmt.Sprintf("🚀 New Post Generated: %s", title)
}

// Body renders the plain-text notification for a generated post: metadata
// plus every platform variant.
func Body(title, tone string, tags []string, variants types.PostVariants, imagePath string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A new post was generated.\n\nTitle: %s\nTone: %s\n", title, tone)
	if len(tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(tags, ", "))
	}
	if imagePath != "" {
		fmt.Fprintf(&sb, "Image: %s\n", imagePath)
	}
	fmt.Fprintf(&sb, "\n--- X ---\n%s\n", variants.X)
	fmt.Fprintf(&sb, "\n--- LinkedIn ---\n%s\n", variants.LinkedIn)
	fmt.Fprintf(&sb, "\n--- Facebook ---\n%s\n", variants.Facebook)
	return sb.String()
}
