package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "12345"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "12345", cursor.ID)

	_, err = DecodeCursor("!!not-base64!!")
	assert.Error(t, err)

	_, err = DecodeCursor("bm90LWpzb24=")
	assert.Error(t, err)
}

func TestBuildCursorPageInfo(t *testing.T) {
	type row struct{ id int }
	cursorOf := func(r *row) string { return strconv.Itoa(r.id) }

	t.Run("overfetched page has more", func(t *testing.T) {
		rows := []*row{{1}, {2}, {3}}
		info, trimmed := BuildCursorPageInfo(rows, 2, cursorOf)
		assert.True(t, info.HasMore)
		assert.Equal(t, "2", info.NextPageToken)
		assert.Len(t, trimmed, 2)
	})

	t.Run("short page is final", func(t *testing.T) {
		rows := []*row{{1}}
		info, trimmed := BuildCursorPageInfo(rows, 2, cursorOf)
		assert.False(t, info.HasMore)
		assert.Equal(t, "1", info.NextPageToken)
		assert.Len(t, trimmed, 1)
	})

	t.Run("empty page", func(t *testing.T) {
		info, trimmed := BuildCursorPageInfo([]*row{}, 2, cursorOf)
		assert.False(t, info.HasMore)
		assert.Empty(t, info.NextPageToken)
		assert.Empty(t, trimmed)
	})
}
