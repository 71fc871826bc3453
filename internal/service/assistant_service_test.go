package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantContextDigest(t *testing.T) {
	store := newTestStore(nil, nil)
	ctx := context.Background()

	req := lecture("Operating Systems", "2024-01-12", "09:00", 60)
	req.Room = "B-101"
	req.Description = "Processes and threads"
	_, err := store.Add(ctx, req)
	require.NoError(t, err)
	_, err = store.Add(ctx, lecture("Networks", "2024-01-11", "09:00", 60))
	require.NoError(t, err)

	got := NewAssistantService(store, 0, nil).Context(ctx, "  When is <b>OS</b>?  ")
	assert.Equal(t, "2024-01-10", got.Today.String())
	assert.Equal(t, "When is OS?", got.Query)
	require.Len(t, got.Events, 2)
	assert.Equal(t, "Networks", got.Events[0].Title)

	lines := strings.Split(got.Digest, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "- Networks (Lecture) on 2024-01-11 at 09:00. Location: N/A, N/A. Details: ", lines[0])
	assert.Equal(t, "- Operating Systems (Lecture) on 2024-01-12 at 09:00. Location: B-101, N/A. Details: Processes and threads", lines[1])
}

func TestAssistantContextDropsPastEventsFirst(t *testing.T) {
	store := newTestStore(nil, nil)
	ctx := context.Background()
	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-10", "2024-01-11", "2024-01-12"} {
		_, err := store.Add(ctx, lecture("Lecture "+date, date, "09:00", 60))
		require.NoError(t, err)
	}

	got := NewAssistantService(store, 3, nil).Context(ctx, "")
	require.Len(t, got.Events, 3)
	assert.Equal(t, "2024-01-10", got.Events[0].Date.String())

	got = NewAssistantService(store, 2, nil).Context(ctx, "")
	require.Len(t, got.Events, 2)
	assert.Equal(t, "2024-01-11", got.Events[1].Date.String())
}

func TestAssistantContextEmpty(t *testing.T) {
	got := NewAssistantService(newTestStore(nil, nil), 0, nil).Context(context.Background(), "anything")
	assert.Empty(t, got.Events)
	assert.Empty(t, got.Digest)
}
