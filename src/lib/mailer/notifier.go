package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"starcall/src/lib"
	"starcall/src/types"
	"strings"
)

var ErrNoRecipient = errors.New("notification has no recipient")

type Notifier interface {
	PaymentApproved(ctx context.Context, n *types.PaymentApprovedNotice) error
	RevisionRequested(ctx context.Context, n *types.RevisionRequestedNotice) error
}

type EmailNotifier struct {
	FromName string
}

func (e *EmailNotifier) PaymentApproved(ctx context.Context, n *types.PaymentApprovedNotice) error {
	if n.CelebrityEmail == "" {
		return ErrNoRecipient
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(n.CelebrityName))
	fmt.Fprintf(&b, "<p>%s approved your video for order <b>%s</b>.</p>", html.EscapeString(n.CustomerName), n.OrderNumber)
	fmt.Fprintf(&b, "<p>Earnings: %.2f %s", n.Earnings, strings.ToUpper(n.Currency))
	if n.TipAmount > 0 {
		fmt.Fprintf(&b, " (includes a %.2f tip)", n.TipAmount)
	}
	b.WriteString("</p>")
	if n.Rating != nil {
		fmt.Fprintf(&b, "<p>Rating: %d/5</p>", *n.Rating)
	}
	return NewMailerMessage(&lib.SendMailInput{
		FromName: e.FromName,
		To:       []string{n.CelebrityEmail},
		Subject:  fmt.Sprintf("Payment sent for order %s", n.OrderNumber),
		Body:     b.String(),
		Html:     true,
	})
}

func (e *EmailNotifier) RevisionRequested(ctx context.Context, n *types.RevisionRequestedNotice) error {
	if n.CelebrityEmail == "" {
		return ErrNoRecipient
	}
	subject := fmt.Sprintf("Revision requested for order %s", n.OrderNumber)
	if n.Final {
		subject = fmt.Sprintf("Order %s was declined", n.OrderNumber)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(n.CelebrityName))
	if n.Final {
		fmt.Fprintf(&b, "<p>The customer declined the video for order <b>%s</b> after %d revisions.</p>", n.OrderNumber, n.RevisionCount)
	} else {
		fmt.Fprintf(&b, "<p>The customer asked for changes to order <b>%s</b>.</p>", n.OrderNumber)
	}
	if n.Reason != "" {
		fmt.Fprintf(&b, "<p>Reason: %s</p>", html.EscapeString(n.Reason))
	}
	return NewMailerMessage(&lib.SendMailInput{
		FromName: e.FromName,
		To:       []string{n.CelebrityEmail},
		Subject:  subject,
		Body:     b.String(),
		Html:     true,
	})
}

var notifier Notifier

func GetNotifier() Notifier {
	if notifier != nil {
		return notifier
	}
	notifier = &EmailNotifier{FromName: "Starcall"}
	return notifier
}

func NewNotifier(n Notifier) {
	notifier = n
}
