package eventbridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/ports"
)

type fakeClient struct {
	inputs []*eventbridge.PutEventsInput
	output *eventbridge.PutEventsOutput
	err    error
}

func (c *fakeClient) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	c.inputs = append(c.inputs, in)
	if c.err != nil {
		return nil, c.err
	}
	if c.output != nil {
		return c.output, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func TestPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	pub := NewPublisher(client, "memebase-bus", zap.NewNop())
	at := time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)

	err := pub.Publish(context.Background(), ports.Event{
		Type:       ports.EventMemeCreated,
		Detail:     map[string]interface{}{"memeId": "m1", "title": "Doge"},
		OccurredAt: at,
	})
	require.NoError(t, err)

	require.Len(t, client.inputs, 1)
	require.Len(t, client.inputs[0].Entries, 1)
	entry := client.inputs[0].Entries[0]
	assert.Equal(t, "memebase-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, Source, aws.ToString(entry.Source))
	assert.Equal(t, "meme.created", aws.ToString(entry.DetailType))
	assert.JSONEq(t, `{"memeId":"m1","title":"Doge"}`, aws.ToString(entry.Detail))
	assert.Equal(t, at, aws.ToTime(entry.Time))
	assert.Equal(t, []string{"arn:aws:memebase::meme/m1"}, entry.Resources)
}

func TestPublisher_Failures(t *testing.T) {
	event := ports.Event{Type: ports.EventBulkCompleted, Detail: map[string]interface{}{"saved": 2}}

	client := &fakeClient{err: errors.New("access denied")}
	assert.Error(t, NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), event))

	client = &fakeClient{output: &eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
	}}
	err := NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 events failed")
	assert.Nil(t, client.inputs[0].Entries[0].Resources)
}

func TestLogPublisher(t *testing.T) {
	assert.NoError(t, NewLogPublisher(zap.NewNop()).Publish(context.Background(), ports.Event{Type: "x"}))
}
