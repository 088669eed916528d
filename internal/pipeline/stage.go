package pipeline

// Stage is a step of the batch state machine:
// Collecting → Processing → Persisting → Reported.
type Stage int

const (
	StageCollecting Stage = iota
	StageProcessing
	StagePersisting
	StageReported
)

func (s Stage) String() string {
	switch s {
	case StageCollecting:
		return "collecting"
	case StageProcessing:
		return "processing"
	case StagePersisting:
		return "persisting"
	case StageReported:
		return "reported"
	default:
		return "unknown"
	}
}

// verb names the failing action of an item error raised in this stage.
func (s Stage) verb() string {
	switch s {
	case StageCollecting:
		return "read"
	case StagePersisting:
		return "write"
	default:
		return "transform"
	}
}
