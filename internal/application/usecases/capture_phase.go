package usecases

// Phase is the step a capture run is in. Idle is both initial and re-entrant.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseCheckingPermissions Phase = "checking_permissions"
	PhaseAcquiring           Phase = "acquiring"
	PhaseLoading             Phase = "loading"
	PhaseAnalyzing           Phase = "analyzing"
	PhaseFormatting          Phase = "formatting"
)

// Outcome is the terminal state a run ended in.
type Outcome string

const (
	OutcomeDenied    Outcome = "denied"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
	OutcomeCompleted Outcome = "completed"
)
