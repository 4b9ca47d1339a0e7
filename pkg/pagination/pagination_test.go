package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token := EncodeCursor(Cursor{Offset: 30, Limit: 10})
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, 30, cursor.Offset)
	assert.Equal(t, 10, cursor.Limit)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not-base64!!")
	assert.Error(t, err)
}

func TestSlicePartition(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	var rebuilt []int
	for offset := 0; offset < len(items); offset += 10 {
		rebuilt = append(rebuilt, Slice(items, offset, 10)...)
	}
	assert.Equal(t, items, rebuilt)
}

func TestSliceOutOfRange(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Empty(t, Slice(items, 10, 10))
	assert.Equal(t, items, Slice(items, -5, 10))
}

func TestBuildLinks(t *testing.T) {
	links := BuildLinks(10, 10, 25)

	first, err := DecodeCursor(links.First)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Offset)

	last, err := DecodeCursor(links.Last)
	require.NoError(t, err)
	assert.Equal(t, 20, last.Offset)

	require.NotNil(t, links.Next)
	next, err := DecodeCursor(*links.Next)
	require.NoError(t, err)
	assert.Equal(t, 20, next.Offset)

	require.NotNil(t, links.Previous)
	prev, err := DecodeCursor(*links.Previous)
	require.NoError(t, err)
	assert.Equal(t, 0, prev.Offset)
}

func TestBuildLinksBoundaries(t *testing.T) {
	firstPage := BuildLinks(0, 10, 25)
	assert.Nil(t, firstPage.Previous)
	assert.NotNil(t, firstPage.Next)

	lastPage := BuildLinks(20, 10, 25)
	assert.NotNil(t, lastPage.Previous)
	assert.Nil(t, lastPage.Next)

	single := BuildLinks(0, 10, 5)
	assert.Nil(t, single.Previous)
	assert.Nil(t, single.Next)

	last, err := DecodeCursor(single.Last)
	require.NoError(t, err)
	assert.Equal(t, 0, last.Offset)
}

func TestBuildLinksPreviousClampsToZero(t *testing.T) {
	links := BuildLinks(5, 10, 25)

	require.NotNil(t, links.Previous)
	prev, err := DecodeCursor(*links.Previous)
	require.NoError(t, err)
	assert.Equal(t, 0, prev.Offset)
}
