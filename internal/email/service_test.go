package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSendBuildsMessage(t *testing.T) {
	d := &recordingDialer{}
	svc := &smtpService{from: "clinic@example.com", dialer: d}

	err := svc.Send(context.Background(), Message{
		To:       "ana@example.com",
		Subject:  "Consulta agendada",
		TextBody: "See you soon",
		HTMLBody: "<p>See you soon</p>",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"clinic@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "See you soon")
	assert.Contains(t, buf.String(), "text/html")
}

func TestSendWrapsDialError(t *testing.T) {
	svc := &smtpService{from: "a@b.c", dialer: &recordingDialer{err: errors.New("refused")}}
	err := svc.Send(context.Background(), Message{To: "x@y.z", HTMLBody: "hi"})
	assert.ErrorContains(t, err, "refused")
}

func TestSendHonoursCancelledContext(t *testing.T) {
	d := &recordingDialer{}
	svc := &smtpService{dialer: d}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, svc.Send(ctx, Message{To: "x@y.z"}), context.Canceled)
	assert.Empty(t, d.sent)
}
