package aws

import (
	"context"
	"log"
	"starcall/src/lib"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type Handler func(body string) error

type SQSConsumer struct {
	Name    string
	handler Handler
	client  lib.SQSAPI
}

func NewSQSConsumer(queue string, handler Handler) *SQSConsumer {
	return &SQSConsumer{
		Name:    queue,
		handler: handler,
	}
}

func (s *SQSConsumer) WithClient(c lib.SQSAPI) *SQSConsumer {
	s.client = c
	return s
}

// Listen polls the queue until ctx is done. Messages are deleted only after
// the handler succeeds, so failed ones become visible again.
func (s *SQSConsumer) Listen(ctx context.Context) {
	go func() {
		qname := s.Name
		client := s.client
		if client == nil {
			client = lib.AWSGetSQSClient()
		}
		if client == nil {
			log.Printf("[SQS] %s: no client, consumer not started\n", qname)
			return
		}
		qurl, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
			QueueName: aws.String(qname),
		})
		if err != nil {
			log.Printf("Failed to retrieve queue URL for %s: %s\n", qname, err.Error())
			return
		}
		log.Printf("%s: Listening for messages...", qname)
		for ctx.Err() == nil {
			if err := s.Poll(ctx, client, qurl.QueueUrl); err != nil {
				log.Printf("[SQS] Error receiving messages: %s\n", err.Error())
				return
			}
		}
	}()
}

// Poll receives one batch and hands each message to the handler.
func (s *SQSConsumer) Poll(ctx context.Context, client lib.SQSAPI, qurl *string) error {
	output, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            qurl,
		WaitTimeSeconds:     20,
		MaxNumberOfMessages: 10,
	})
	if err != nil {
		return err
	}
	for i := range output.Messages {
		m := output.Messages[i]
		s.handle(client, qurl, &m)
	}
	return nil
}

func (s *SQSConsumer) handle(client lib.SQSAPI, qurl *string, m *sqstypes.Message) {
	body := strings.Clone(aws.ToString(m.Body))
	if err := s.handler(body); err != nil {
		log.Printf("[SQS] %s: handler failed for message %s: %s\n", s.Name, aws.ToString(m.MessageId), err.Error())
		return
	}
	lib.SQSDeleteMessage(client, qurl, m)
}
