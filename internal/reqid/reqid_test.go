package reqid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	_, ok = FromContext(context.Background())
	require.False(t, ok, "unexpected id in empty context")
}

func TestWithID(t *testing.T) {
	given := "0b6a4a52-5d4b-4a40-9a4e-1f0c7f3c2b11"
	ctx, id := WithID(context.Background(), given)
	require.Equal(t, given, id)
	got, _ := FromContext(ctx)
	require.Equal(t, given, got)

	_, id = WithID(context.Background(), "not-a-uuid")
	require.NotEqual(t, "not-a-uuid", id)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}
