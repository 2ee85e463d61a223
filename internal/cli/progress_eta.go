package cli

import (
	"fmt"
	"time"
)

const (
	// etaWarmup is the elapsed time below which no estimate is produced.
	etaWarmup = 100 * time.Millisecond
	// etaMinSample is the minimum spacing between two rate samples.
	etaMinSample = 50 * time.Millisecond
	// etaCap bounds the displayed estimate.
	etaCap = 24 * time.Hour
	// rateSmoothing is the weight of the previous rate in the moving average.
	rateSmoothing = 0.7
)

// ProgressWithETA adds a remaining-time estimate to ProgressState. The rate
// is an exponential moving average of the observed progress per second.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	rate         float64

	now func() time.Time
}

// NewProgressWithETA tracks numEvaluators evaluators starting now.
func NewProgressWithETA(numEvaluators int) *ProgressWithETA {
	return newProgressWithClock(numEvaluators, time.Now)
}

func newProgressWithClock(numEvaluators int, now func() time.Time) *ProgressWithETA {
	start := now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numEvaluators),
		startTime:     start,
		lastUpdate:    start,
		now:           now,
	}
}

// UpdateWithETA records value for the evaluator at index and returns the new
// average progress with the estimated time left. The estimate is 0 until
// enough time and progress have been observed.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)
	progress := p.CalculateAverage()

	now := p.now()
	if now.Sub(p.startTime) < etaWarmup || progress <= 0.001 {
		p.lastUpdate = now
		p.lastProgress = progress
		return progress, 0
	}

	if since := now.Sub(p.lastUpdate); since > etaMinSample {
		if delta := progress - p.lastProgress; delta > 0 {
			if p.rate > 0 {
				p.rate = rateSmoothing*p.rate + (1-rateSmoothing)*delta/since.Seconds()
			} else {
				p.rate = progress / now.Sub(p.startTime).Seconds()
			}
		}
		p.lastUpdate = now
		p.lastProgress = progress
	}

	return progress, p.remaining(progress)
}

// GetETA returns the current estimate without recording progress.
func (p *ProgressWithETA) GetETA() time.Duration {
	return p.remaining(p.CalculateAverage())
}

func (p *ProgressWithETA) remaining(progress float64) time.Duration {
	if p.rate <= 0 || progress >= 1.0 {
		return 0
	}
	eta := time.Duration((1.0 - progress) / p.rate * float64(time.Second))
	if eta > etaCap {
		eta = etaCap
	}
	return eta
}

// FormatETA renders eta as "calculating...", "< 1s", "42s", "2m30s" or
// "1h15m" depending on its magnitude.
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		return joinUnits(int(eta.Minutes()), "m", int(eta.Seconds())%60, "s")
	}
	return joinUnits(int(eta.Hours()), "h", int(eta.Minutes())%60, "m")
}

func joinUnits(major int, majorUnit string, minor int, minorUnit string) string {
	if minor > 0 {
		return fmt.Sprintf("%d%s%d%s", major, majorUnit, minor, minorUnit)
	}
	return fmt.Sprintf("%d%s", major, majorUnit)
}

// FormatProgressBarWithETA renders "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}
