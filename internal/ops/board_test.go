package ops

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_TrackAndStatusesSorted(t *testing.T) {
	board := NewBoard()
	board.Track("zeta", "out/zeta.csv")
	board.Track("alpha", "out/alpha.csv")

	statuses := board.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "alpha", statuses[0].Account)
	assert.Equal(t, "zeta", statuses[1].Account)
	assert.Equal(t, "out/alpha.csv", statuses[0].LogFile)
	assert.Empty(t, statuses[0].LastResult)
}

func TestBoard_CycleDoneUpdatesState(t *testing.T) {
	board := NewBoard()
	board.Track("main", "main.csv")

	failedAt := time.Now()
	board.CycleDone("main", failedAt, errors.New("disk full"))

	statuses := board.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, "error", statuses[0].LastResult)
	assert.Equal(t, "disk full", statuses[0].LastError)
	assert.Equal(t, failedAt, statuses[0].LastCycle)

	// a later success clears the error
	board.CycleDone("main", time.Now(), nil)
	statuses = board.Statuses()
	assert.Equal(t, "success", statuses[0].LastResult)
	assert.Empty(t, statuses[0].LastError)
}

func TestBoard_CycleDoneForUntrackedAccount(t *testing.T) {
	board := NewBoard()
	board.CycleDone("main", time.Now(), nil)

	statuses := board.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, "main", statuses[0].Account)
	assert.Equal(t, "success", statuses[0].LastResult)
}
