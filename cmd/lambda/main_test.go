package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jabramco/memebase/domain/core/valueobjects"
)

func TestHandler_ScheduledEventRunsCleanup(t *testing.T) {
	ctx := context.Background()
	require.NotNil(t, container)

	_, err := container.Interactions.RecordInteraction(ctx, "m1", valueobjects.KindView)
	require.NoError(t, err)

	out, err := Handler(ctx, []byte(`{"source":"aws.events","detail-type":"Scheduled Event","detail":{}}`))
	require.NoError(t, err)
	// The current week is always retained
	assert.Equal(t, map[string]int{"pruned": 0}, out)
	assert.Equal(t, 1, container.Interactions.Stats(ctx, "m1").Views)
}
