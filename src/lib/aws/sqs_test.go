package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSQS struct {
	mock.Mock
}

func (m *mockSQS) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*sqs.GetQueueUrlOutput), args.Error(1)
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
}

func (m *mockSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *mockSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func TestSQSConsumerPoll(t *testing.T) {
	client := new(mockSQS)
	qurl := aws.String("https://sqs.local/emails")
	client.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []sqstypes.Message{
			{MessageId: aws.String("m1"), Body: aws.String(`{"ok":true}`), ReceiptHandle: aws.String("r1")},
			{MessageId: aws.String("m2"), Body: aws.String(`{"ok":false}`), ReceiptHandle: aws.String("r2")},
		},
	}, nil).Once()
	client.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(in *sqs.DeleteMessageInput) bool {
		return aws.ToString(in.ReceiptHandle) == "r1"
	})).Return(&sqs.DeleteMessageOutput{}, nil).Once()

	var seen []string
	consumer := NewSQSConsumer("emails", func(body string) error {
		seen = append(seen, body)
		if body == `{"ok":false}` {
			return errors.New("smtp down")
		}
		return nil
	}).WithClient(client)

	err := consumer.Poll(context.Background(), client, qurl)

	assert.NoError(t, err)
	assert.Equal(t, []string{`{"ok":true}`, `{"ok":false}`}, seen)
	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "DeleteMessage", 1)
}

func TestSQSConsumerPollError(t *testing.T) {
	client := new(mockSQS)
	client.On("ReceiveMessage", mock.Anything, mock.Anything).Return((*sqs.ReceiveMessageOutput)(nil), errors.New("throttled")).Once()

	consumer := NewSQSConsumer("emails", func(string) error { return nil })
	err := consumer.Poll(context.Background(), client, aws.String("q"))

	assert.EqualError(t, err, "throttled")
}

func TestVideoKey(t *testing.T) {
	assert.Equal(t, "videos/SC-ABC/r0.mp4", VideoKey("SC-ABC", 0))
}
