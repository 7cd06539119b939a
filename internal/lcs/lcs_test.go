package lcs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wherewhere/wrapgen/internal/lcs"
)

func TestCommon(t *testing.T) {
	got := lcs.Common([]string{"Read", "Bytes", "At"}, []string{"Reed", "Bytes", "At"})
	assert.Equal(t, []string{"Bytes", "At"}, got)
}

func TestCommonKeepsOrder(t *testing.T) {
	got := lcs.Common([]string{"a", "b", "c"}, []string{"c", "a", "b"})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestCommonEmpty(t *testing.T) {
	got := lcs.Common(nil, []string{"a"})
	assert.Empty(t, got)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, lcs.Similarity("ReadBytes", "ReadBytes"))
	assert.Equal(t, 0.5, lcs.Similarity("ReedBytes", "ReadBytes"))
	assert.Equal(t, 0.0, lcs.Similarity("Pong", "Ping"))
}

func TestSimilarityEmpty(t *testing.T) {
	assert.Equal(t, 0.0, lcs.Similarity("", ""))
}

func TestClosest(t *testing.T) {
	got := lcs.Closest("ReedBytes", []string{"Name", "ReadBytes", "Close"})
	assert.Equal(t, "ReadBytes", got)
}

func TestClosestNoSharedWord(t *testing.T) {
	got := lcs.Closest("Pong", []string{"Name", "Ping", "Close"})
	assert.Equal(t, "", got)
}

func TestClosestTieKeepsFirst(t *testing.T) {
	got := lcs.Closest("ReadAll", []string{"ReadBytes", "ReadString"})
	assert.Equal(t, "ReadBytes", got)
}
