// apps/go-server/internal/session/phase.go
//
// Explicit round-lifecycle phases shared by both game machines. One enum
// instead of independent revealed/isTransitioning/isLoading booleans, so
// illegal combinations cannot be represented.

package session

// Phase is the lifecycle state of one mode session.
type Phase string

const (
	// PhaseSelecting: no mode chosen yet; the UI shows the mode picker.
	PhaseSelecting Phase = "selecting"
	// PhaseLoading: pool fetch in flight or failed-but-retryable.
	PhaseLoading Phase = "loading"
	// PhaseReady: a round is displayed and exactly one guess is accepted.
	PhaseReady Phase = "ready"
	// PhaseRevealing: answer shown; a scheduled advance will draw the next
	// round after the reveal delay.
	PhaseRevealing Phase = "revealing"
)
