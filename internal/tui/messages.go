package tui

import (
	"time"

	"github.com/steviee/ytinu/internal/model"
)

// tickMsg is sent on every auto-refresh tick
type tickMsg time.Time

// stateLoadedMsg is sent when the state file has been re-read
type stateLoadedMsg struct {
	state *model.State
	err   error
}

// catalogLoadedMsg is sent when a catalog fetch completes
type catalogLoadedMsg struct {
	meta *model.Metadata
	err  error
}

// clearErrorMsg is sent to clear the error message
type clearErrorMsg struct{}
