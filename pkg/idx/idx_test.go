package idx_test

import (
	"slices"
	"testing"
	"time"

	"github.com/aussiebroadwan/folio/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.Len(t, id.String(), 26)

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
	require.False(t, id.IsZero())
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-ulid", "../etc/passwd", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
	}
}

func TestMonotonicOrdering(t *testing.T) {
	at := time.Unix(1700000000, 0).UTC()
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = idx.NewAt(at).String()
	}
	require.True(t, slices.IsSorted(ids), "same-millisecond IDs must sort in creation order")
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	id := idx.NewAt(tm)
	require.WithinDuration(t, tm, id.Time(), time.Millisecond)
	require.True(t, idx.Zero.Time().IsZero())
}
