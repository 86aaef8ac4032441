package shipment

// StageState is how a lifecycle stage renders
type StageState string

const (
	StageCompleted StageState = "completed"
	StageCurrent   StageState = "current"
	StagePending   StageState = "pending"
)

// Stage is one step of a rendered timeline
type Stage struct {
	Status Status
	State  StageState
}

// Timeline is the render model for an order's progress.
// Terminal timelines have no stages and render as a standalone card.
type Timeline struct {
	Current  Status
	Terminal bool
	Stages   []Stage
}

// NewTimeline builds the progress model for status. Every stage up to and including
// the current index is completed; the current index is additionally marked current.
func NewTimeline(status Status) Timeline {
	if status.IsTerminal() {
		return Timeline{Current: status, Terminal: true}
	}

	idx := status.Index()
	stages := make([]Stage, len(Lifecycle))
	for i, st := range Lifecycle {
		state := StagePending
		switch {
		case i == idx:
			state = StageCurrent
		case i < idx:
			state = StageCompleted
		}
		stages[i] = Stage{Status: st, State: state}
	}
	return Timeline{Current: Lifecycle[idx], Stages: stages}
}

// Completed reports whether the stage at i is done, the current stage included
func (t Timeline) Completed(i int) bool {
	if i < 0 || i >= len(t.Stages) {
		return false
	}
	return t.Stages[i].State != StagePending
}

// Progress returns the completed fraction in [0,1]
func (t Timeline) Progress() float64 {
	if t.Terminal || len(t.Stages) <= 1 {
		return 0
	}
	return float64(t.Current.Index()) / float64(len(t.Stages)-1)
}
