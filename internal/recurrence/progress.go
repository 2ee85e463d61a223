package recurrence

// ProgressUpdate carries the progress of one evaluator to the UI. It is sent
// over a channel so that several concurrent evaluations can share a display.
type ProgressUpdate struct {
	// EvaluatorIndex identifies the evaluator among those running together.
	EvaluatorIndex int
	// Value is the normalized progress, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback used by core strategies to report
// progress without knowing about channels.
type ProgressReporter func(progress float64)

// progressInterval is the number of steps between two progress reports.
const progressInterval = cancelCheckInterval

// channelReporter adapts a progress channel into a ProgressReporter. Sends
// never block: a slow display drops intermediate updates.
func channelReporter(ch chan<- ProgressUpdate, index int) ProgressReporter {
	if ch == nil {
		return func(float64) {}
	}
	return func(v float64) {
		select {
		case ch <- ProgressUpdate{EvaluatorIndex: index, Value: v}:
		default:
		}
	}
}

// stepProgress is the fraction of the window advances done after step k of
// an evaluation up to n. Both evaluators do n-1 combinations.
func stepProgress(k, n int64) float64 {
	if n < 2 {
		return 1
	}
	return float64(k-1) / float64(n-1)
}
