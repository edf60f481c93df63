package mailer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"starcall/src/lib"
	"starcall/src/utils"

	"github.com/tidwall/gjson"
)

// NewMailerMessage queues the email on EMAIL_QUEUE, or sends it straight over
// SMTP when no queue is configured.
func NewMailerMessage(input *lib.SendMailInput) error {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	if emailQueue == "" {
		return sendMail(input)
	}
	body, err := json.Marshal(input)
	if err != nil {
		return err
	}
	if err := produceMessage(utils.WithSuffix(emailQueue), string(body)); err != nil {
		return fmt.Errorf("error sending message to queue: %s", err.Error())
	}
	return nil
}

// DeliverQueuedMessage is the EMAIL_QUEUE consumer handler.
func DeliverQueuedMessage(body string) error {
	if !gjson.Valid(body) {
		return errors.New("invalid email payload")
	}
	parsed := gjson.Parse(body)
	to := []string{}
	for _, r := range parsed.Get("to").Array() {
		to = append(to, r.String())
	}
	if len(to) == 0 {
		return errors.New("email payload has no recipients")
	}
	input := &lib.SendMailInput{
		From:     parsed.Get("from").String(),
		FromName: parsed.Get("from-name").String(),
		To:       to,
		ReplyTo:  parsed.Get("reply-to").String(),
		Subject:  parsed.Get("subject").String(),
		Body:     parsed.Get("body").String(),
		Html:     parsed.Get("html").Bool(),
	}
	for _, r := range parsed.Get("cc").Array() {
		input.Cc = append(input.Cc, r.String())
	}
	for _, r := range parsed.Get("bcc").Array() {
		input.Bcc = append(input.Bcc, r.String())
	}
	return sendMail(input)
}

// swapped in tests
var (
	sendMail       = lib.SendMail
	produceMessage = lib.SQSProduceMessage
)
