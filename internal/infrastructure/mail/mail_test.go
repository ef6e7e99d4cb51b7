package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/infrastructure/config"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

type recordingSender struct {
	messages []Message
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.messages = append(s.messages, msg)
	return nil
}

func TestSMTPSender_Send(t *testing.T) {
	d := &fakeDialer{}
	sender := &SMTPSender{dialer: d, from: "shop@example.com"}

	err := sender.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", Text: "plain", HTML: "<p>rich</p>"})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"shop@example.com"}, d.sent[0].GetHeader("From"))
	assert.Equal(t, []string{"a@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Hi"}, d.sent[0].GetHeader("Subject"))

	assert.ErrorIs(t, sender.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipient)

	d.err = errors.New("535 auth failed")
	err = sender.Send(context.Background(), Message{To: "a@example.com", HTML: "x"})
	assert.ErrorContains(t, err, "535 auth failed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, Message{To: "a@example.com"}), context.Canceled)
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, &LogSender{}, NewSender(config.MailConfig{}, zap.NewNop()))
	assert.IsType(t, &SMTPSender{}, NewSender(config.MailConfig{Enabled: true, Host: "smtp", Port: 587}, zap.NewNop()))
	assert.NoError(t, NewLogSender(zap.NewNop()).Send(context.Background(), Message{To: "a@b.c"}))
}

func TestNotifier_SendPasswordReset(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "", "https://shop.example.com/")

	require.NoError(t, n.SendPasswordReset(context.Background(), "meera@example.com", "Meera", "tok123", time.Hour))
	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, "meera@example.com", msg.To)
	assert.Contains(t, msg.Text, "https://shop.example.com/reset-password?token=tok123")
	assert.Contains(t, msg.HTML, `href="https://shop.example.com/reset-password?token=tok123"`)
	assert.Contains(t, msg.Text, "1h0m0s")
}

func TestNotifier_SendInquiryNotification(t *testing.T) {
	inquiry, err := content.NewDesignInquiry(content.InquiryInput{
		Name:        "Meera",
		Email:       "meera@example.com",
		ProductType: "Saree",
		Description: "Hand-painted border with peacock motifs",
		Budget:      decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	inquiry.ID = uuid.New()

	sender := &recordingSender{}
	require.NoError(t, NewNotifier(sender, "", "").SendInquiryNotification(context.Background(), inquiry))
	assert.Empty(t, sender.messages)

	require.NoError(t, NewNotifier(sender, "admin@example.com", "").SendInquiryNotification(context.Background(), inquiry))
	require.Len(t, sender.messages, 1)
	assert.Equal(t, "admin@example.com", sender.messages[0].To)
	assert.Contains(t, sender.messages[0].Subject, "Meera")
	assert.Contains(t, sender.messages[0].Text, "peacock motifs")
	assert.Contains(t, sender.messages[0].Text, "5000")
}
