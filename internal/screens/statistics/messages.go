package statistics

import (
	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/moderation"
)

// overviewMsg carries the full statistics load.
type overviewMsg struct {
	Overview *moderation.Overview
	Err      error
}

// tilesMsg carries the tiles reread after a moderation action.
type tilesMsg struct {
	Tiles []api.Response
	Err   error
}

// confirmMsg is the outcome of a password-gated override.
type confirmMsg struct {
	Tiles []api.Response
	Err   error
}

// statsMsg carries refreshed totals after a change.
type statsMsg struct {
	Stats *api.Stats
	Err   error
}
