package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func TestBuildMessage(t *testing.T) {
	t.Setenv("SMTP_FROM", "payouts@starcall.example")

	msg, err := BuildMessage(&SendMailInput{
		FromName: "Starcall",
		To:       []string{"star@example.com"},
		Subject:  "Payment approved for SC-1",
		Body:     "<p>hello</p>",
		Html:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Payment approved for SC-1"}, msg.GetGenHeader(mail.HeaderSubject))
	from := msg.GetFrom()
	require.Len(t, from, 1)
	assert.Equal(t, "payouts@starcall.example", from[0].Address)
	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"star@example.com"}, rcpts)
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	_, err := BuildMessage(&SendMailInput{
		From:    "payouts@starcall.example",
		To:      []string{"not an address"},
		Subject: "x",
	})
	assert.Error(t, err)
}
