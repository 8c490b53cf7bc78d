package chat

// RunStatus is the lifecycle state of one upstream response cycle:
// queued -> in_progress -> {completed | failed}. The remaining states are
// reported by the upstream service but never requested by this system; they
// are treated as terminal failures.
type RunStatus string

const (
	RunQueued     RunStatus = "queued"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
	RunCancelled  RunStatus = "cancelled"
	RunExpired    RunStatus = "expired"
	RunIncomplete RunStatus = "incomplete"
)

// Terminal reports whether the run will make no further progress.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunCancelled, RunExpired, RunIncomplete:
		return true
	}
	return false
}

// Succeeded reports whether a terminal run produced an assistant message.
func (s RunStatus) Succeeded() bool {
	return s == RunCompleted
}
