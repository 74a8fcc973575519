package meeting

// TalkTimeAccumulator tracks cumulative seconds spoken per attendee display
// name. Every attendee is seeded with zero so finished meetings report an
// entry even for speakers who never held the floor long enough to tick.
//
// Like Countdown, it is tick-driven and owned by a single writer; the
// session delivers one Tick per wall-clock second for whoever currently
// holds the floor.
type TalkTimeAccumulator struct {
	seconds map[string]int
}

// NewTalkTimeAccumulator seeds a zero entry for each name.
func NewTalkTimeAccumulator(names []string) *TalkTimeAccumulator {
	m := make(map[string]int, len(names))
	for _, n := range names {
		m[n] = 0
	}
	return &TalkTimeAccumulator{seconds: m}
}

// Tick attributes one second to name.
func (a *TalkTimeAccumulator) Tick(name string) {
	a.seconds[name]++
}

// Snapshot returns a copy of the name -> seconds mapping, safe to hand out
// while accumulation continues.
func (a *TalkTimeAccumulator) Snapshot() map[string]int {
	out := make(map[string]int, len(a.seconds))
	for k, v := range a.seconds {
		out[k] = v
	}
	return out
}

// Total returns the sum of all attributed seconds.
func (a *TalkTimeAccumulator) Total() int {
	total := 0
	for _, v := range a.seconds {
		total += v
	}
	return total
}
