package models

// JobState is a crawl job's position in its lifecycle.
type JobState int

const (
	Created JobState = iota
	Navigating
	WaitingForInitialContent
	Scrolling
	Extracting
	Completed
	Failed
)

func (s JobState) String() string {
	switch s {
	case Created:
		return "created"
	case Navigating:
		return "navigating"
	case WaitingForInitialContent:
		return "waiting_for_initial_content"
	case Scrolling:
		return "scrolling"
	case Extracting:
		return "extracting"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s JobState) Terminal() bool {
	return s == Completed || s == Failed
}
