package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/iyhunko/catalogo-prodotti/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSQSClient is a mock implementation of the SQS client for testing.
type mockSQSClient struct {
	sendMessageFunc func(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

func (m *mockSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, params, optFns...)
	}
	return &sqs.SendMessageOutput{}, nil
}

func TestPublisher_PublishProductMessage(t *testing.T) {
	t.Run("successful message publish", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		var sentBody string
		mockClient := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				assert.Equal(t, queueURL, *params.QueueUrl)
				require.NotNil(t, params.MessageBody)
				sentBody = *params.MessageBody
				return &sqs.SendMessageOutput{
					MessageId: aws.String("test-message-id"),
				}, nil
			},
		}

		publisher := NewPublisher(mockClient, queueURL)
		msg := NewProductMessage(ActionCreated, model.Product{ID: 7, Name: "Mug", Price: 10, Available: true})

		// when
		err := publisher.PublishProductMessage(ctx, msg)

		// then
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"created","product_id":7,"nome":"Mug","prezzo":10,"disponibile":true}`, sentBody)
	})

	t.Run("error sending message", func(t *testing.T) {
		// given
		queueURL := "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"
		ctx := context.Background()

		expectedErr := errors.New("failed to send message")
		mockClient := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, _ *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				return nil, expectedErr
			},
		}

		publisher := NewPublisher(mockClient, queueURL)

		// when
		err := publisher.PublishProductMessage(ctx, ProductMessage{Action: ActionDeleted, ProductID: 3})

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "failed to send message to SQS")
	})
}

func TestNewProductMessage(t *testing.T) {
	msg := NewProductMessage(ActionUpdated, model.Product{ID: 1, Name: "Pen", Price: 2, Available: false})

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded ProductMessage
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, ProductMessage{Action: ActionUpdated, ProductID: 1, Name: "Pen", Price: 2, Available: false}, decoded)
}
