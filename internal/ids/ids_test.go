package ids_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/fedteam/internal/ids"
	"github.com/stretchr/testify/require"
)

func TestRequestIDsAreOrdered(t *testing.T) {
	a := ids.RequestID()
	b := ids.RequestID()
	require.Len(t, a, 26)
	require.Less(t, a, b)
}

func TestSessionID(t *testing.T) {
	id := ids.SessionID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.NotEqual(t, id, ids.SessionID())
}
