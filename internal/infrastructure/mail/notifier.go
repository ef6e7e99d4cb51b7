package mail

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/storefront/backend/internal/domain/content"
)

var (
	resetHTML = htmltemplate.Must(htmltemplate.New("reset").Parse(`<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for {{.Validity}}.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>If you did not ask for this, you can ignore this email.</p>`))

	resetText = texttemplate.Must(texttemplate.New("reset").Parse(`Hi {{.Name}},

We received a request to reset your password. The link below is valid for {{.Validity}}.

{{.Link}}

If you did not ask for this, you can ignore this email.
`))

	inquiryText = texttemplate.Must(texttemplate.New("inquiry").Parse(`New design inquiry {{.ID}}

Name:         {{.Name}}
Email:        {{.Email}}
Phone:        {{.Phone}}
Product type: {{.ProductType}}
Budget:       {{.Budget}}
Images:       {{len .ReferenceImages}}

{{.Description}}
`))
)

// Notifier renders and sends the storefront's transactional emails
type Notifier struct {
	sender       Sender
	adminAddress string
	publicURL    string
}

// NewNotifier creates a notifier. publicURL is the storefront origin used in links.
func NewNotifier(sender Sender, adminAddress, publicURL string) *Notifier {
	return &Notifier{
		sender:       sender,
		adminAddress: adminAddress,
		publicURL:    strings.TrimRight(publicURL, "/"),
	}
}

// SendPasswordReset mails the reset link for a raw token
func (n *Notifier) SendPasswordReset(ctx context.Context, to, name, token string, validity time.Duration) error {
	data := struct {
		Name, Link, Validity string
	}{
		Name:     name,
		Link:     fmt.Sprintf("%s/reset-password?token=%s", n.publicURL, token),
		Validity: validity.String(),
	}

	var html, text bytes.Buffer
	if err := resetHTML.Execute(&html, data); err != nil {
		return fmt.Errorf("mail: render reset html: %w", err)
	}
	if err := resetText.Execute(&text, data); err != nil {
		return fmt.Errorf("mail: render reset text: %w", err)
	}
	return n.sender.Send(ctx, Message{
		To:      to,
		Subject: "Reset your password",
		HTML:    html.String(),
		Text:    text.String(),
	})
}

// SendInquiryNotification tells the admin mailbox about a new design inquiry.
// Without an admin address nothing is sent.
func (n *Notifier) SendInquiryNotification(ctx context.Context, inquiry *content.DesignInquiry) error {
	if n.adminAddress == "" {
		return nil
	}
	var text bytes.Buffer
	if err := inquiryText.Execute(&text, inquiry); err != nil {
		return fmt.Errorf("mail: render inquiry: %w", err)
	}
	return n.sender.Send(ctx, Message{
		To:      n.adminAddress,
		Subject: fmt.Sprintf("New design inquiry from %s", inquiry.Name),
		Text:    text.String(),
	})
}
