package charge

// DefaultInterval is how many ticks pass between two consumptions.
const DefaultInterval = 100

// Ticker drains resources on a fixed cadence. Each item fires on the ticks
// where (tick + offset) is a multiple of Interval, so items with different
// offsets do not all drain on the same tick.
type Ticker struct {
	Interval int
}

// NewTicker returns a ticker with the given interval, DefaultInterval when <= 0.
func NewTicker(interval int) Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Ticker{Interval: interval}
}

// Due counts the firing ticks in (last, now].
func (t Ticker) Due(offset, last, now int) int {
	if now <= last {
		return 0
	}
	return floorDiv(now+offset, t.Interval) - floorDiv(last+offset, t.Interval)
}

// Advance consumes one charge per firing tick in (last, now] and returns
// how many firing ticks passed. Runs in constant time however far now is
// from last.
func (t Ticker) Advance(r *Resource, offset, last, now int) int {
	n := t.Due(offset, last, now)
	r.ConsumeN(n)
	return n
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
