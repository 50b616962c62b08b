package cli

import (
	"time"

	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	Store       core.TaskStore
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)

// List view settings, set from .todoconfig in app.go.
var (
	AnimationDuration = 500 * time.Millisecond
	AnimationFPS      = 30
)
