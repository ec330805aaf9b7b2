package availability

import "fmt"

var statusTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// CanTransition reports whether a booking may move from one status to the next
// under the strict lifecycle.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to BookingStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalStatusTransition, from, to)
	}
	return nil
}
