package cli

import (
	"net/url"
	"strings"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in     string
		dx, dy int
	}{
		{"up", 0, -1},
		{"W", 0, -1},
		{"k", 0, -1},
		{"down", 0, 1},
		{"s", 0, 1},
		{"j", 0, 1},
		{"Left", -1, 0},
		{"a", -1, 0},
		{"h", -1, 0},
		{"right", 1, 0},
		{"d", 1, 0},
		{"l", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			dx, dy, err := parseDirection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.dx, dx)
			assert.Equal(t, tt.dy, dy)
		})
	}

	_, _, err := parseDirection("sideways")
	assert.Error(t, err)
}

func TestBoardCells(t *testing.T) {
	r := Round{
		GridSize:  4,
		PlayerPos: Position{X: 1, Y: 1},
		DoorPos:   Position{X: 3, Y: 3},
		Keys:      []Position{{X: 2, Y: 0}},
		Hazards:   []Position{{X: 0, Y: 3}, {X: 2, Y: 2}},
		Revealed:  []Position{{X: 2, Y: 2}},
		Visited:   []Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}},
		LastHit:   &Hit{X: 2, Y: 2, Side: "right", Seq: 1},
	}

	grid := boardCells(r)
	require.Len(t, grid, 4)
	for _, row := range grid {
		require.Len(t, row, 4)
	}

	assert.Equal(t, cellVisited, grid[0][0])
	assert.Equal(t, cellVisited, grid[0][1])
	assert.Equal(t, cellKey, grid[0][2])
	assert.Equal(t, cellPlayer, grid[1][1], "player is drawn over the visited trail")
	assert.Equal(t, cellHit, grid[2][2], "latest hit is drawn over the revealed hazard")
	assert.Equal(t, cellHazard, grid[3][0])
	assert.Equal(t, cellDoor, grid[3][3])
	assert.Equal(t, cellEmpty, grid[3][1])

	r.DoorOpen = true
	r.LastHit = nil
	grid = boardCells(r)
	assert.Equal(t, cellDoorOpen, grid[3][3])
	assert.Equal(t, cellRevealed, grid[2][2])
}

func TestBoardCellsIgnoresOutOfRange(t *testing.T) {
	r := Round{
		GridSize:  2,
		PlayerPos: Position{X: 0, Y: 0},
		DoorPos:   Position{X: 5, Y: 5},
		Visited:   []Position{{X: -1, Y: 0}},
	}

	grid := boardCells(r)
	require.Len(t, grid, 2)
	assert.Equal(t, cellPlayer, grid[0][0])
	assert.Equal(t, cellEmpty, grid[1][1])

	assert.Nil(t, boardCells(Round{}))
}

func TestRenderBoard(t *testing.T) {
	prev := color.Enable
	color.Enable = false
	defer func() { color.Enable = prev }()

	lines := renderBoard(Round{
		GridSize:  3,
		PlayerPos: Position{X: 0, Y: 0},
		DoorPos:   Position{X: 2, Y: 2},
		Keys:      []Position{{X: 1, Y: 1}},
	})

	require.Len(t, lines, 5)
	assert.Equal(t, "+-------+", lines[0])
	assert.Equal(t, "| @ . . |", lines[1])
	assert.Equal(t, "| . k . |", lines[2])
	assert.Equal(t, "| . . D |", lines[3])
	assert.Equal(t, lines[0], lines[4])
}

func TestLiveURL(t *testing.T) {
	c := NewClient("https://example.com/", "tok en")

	raw, err := c.LiveURL("/sessions/abc/ws", true)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "wss", u.Scheme)
	assert.Equal(t, "/sessions/abc/ws", u.Path)
	assert.Equal(t, "tok en", u.Query().Get("token"))

	raw, err = NewClient("http://localhost:8080", "").LiveURL("/sessions/abc/events", false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "http://localhost:8080/sessions/abc/events"))
	assert.NotContains(t, raw, "token=")
}

func TestSessionPath(t *testing.T) {
	assert.Equal(t, "/api/v1/sessions/abc", sessionPath("abc"))
	assert.Equal(t, "/api/v1/sessions/abc/start", sessionPath("abc", "start"))
}
