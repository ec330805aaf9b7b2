package availability

import (
	"fmt"
	"strconv"
	"time"
)

const dstProbeStep = 30 * time.Minute

// DetectTransitions walks [start, end) in 30-minute steps and reports every
// UTC offset change seen in loc. Transitions that fall between probes are
// attributed to the probe after them. The last probe is clamped to end.
func DetectTransitions(start, end time.Time, loc *time.Location) []DSTTransition {
	if loc == nil {
		loc = time.UTC
	}
	var out []DSTTransition
	for t := start; t.Before(end); t = t.Add(dstProbeStep) {
		next := t.Add(dstProbeStep)
		if next.After(end) {
			next = end
		}
		_, before := t.In(loc).Zone()
		_, after := next.In(loc).Zone()
		if before == after {
			continue
		}
		out = append(out, newTransition(next.In(loc), (after-before)/60))
	}
	return out
}

func newTransition(at time.Time, deltaMinutes int) DSTTransition {
	typ, verb, change := TransitionStart, "forward", deltaMinutes
	if deltaMinutes < 0 {
		typ, verb, change = TransitionEnd, "back", -deltaMinutes
	}
	// Wall clock reading just before the jump, e.g. 02:00 for both US changes.
	wall := ((at.Hour()*60+at.Minute()-deltaMinutes)%1440 + 1440) % 1440
	jump := fmt.Sprintf("%02d:%02d", wall/60, wall%60)
	hours := float64(change) / 60
	unit := "hours"
	if hours == 1 {
		unit = "hour"
	}
	return DSTTransition{
		Type:          typ,
		ChangeMinutes: change,
		At:            at,
		Message: fmt.Sprintf("Clocks move %s %s %s at %s local time (now %s)",
			verb, strconv.FormatFloat(hours, 'f', -1, 64), unit, jump, at.Format("15:04 MST")),
	}
}
