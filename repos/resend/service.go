package resend

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	resend "github.com/resend/resend-go/v2"
)

// emailSender is the part of the resend client the service uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Service struct {
	emails emailSender
	from   string
}

func NewService(apiKey, from string) *Service {
	return &Service{
		emails: resend.NewClient(apiKey).Emails,
		from:   from,
	}
}

// SendExport mails a CSV export as an attachment.
func (s Service) SendExport(ctx context.Context, mail ExportMail, csv []byte) error {
	if len(mail.To) == 0 {
		return errors.New("no recipient")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      mail.To,
		Subject: fmt.Sprintf("Scouting export: %s entries", mail.Purpose),
		Html:    getEmailTemplate(mail),
		Attachments: []*resend.Attachment{{
			Content:  csv,
			Filename: mail.Filename,
		}},
	}

	sent, err := s.emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send export mail: %w", err)
	}
	if sent == nil || sent.Id == "" {
		return errors.New("failed to send export mail: empty response")
	}
	return nil
}

func getEmailTemplate(mail ExportMail) string {
	scope := "all events"
	if mail.EventCode != "" {
		scope = html.EscapeString(mail.EventCode)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: Arial, sans-serif;
            background-color: #f4f4f4;
            margin: 0;
            padding: 20px;
        }
        .container {
            background-color: #ffffff;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
    </style>
</head>
<body>
    <div class="container">
        <h2>Hello,</h2>
        <p>Attached is the %s scouting export for %s with %d rows.</p>
        <p>File: %s</p>
    </div>
</body>
</html>`, html.EscapeString(strings.ToLower(mail.Purpose)), scope, mail.Rows, html.EscapeString(mail.Filename))
}
