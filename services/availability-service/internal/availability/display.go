package availability

import (
	"fmt"
	"time"
)

// DisplayInfo is a booking rendered in a viewer's zone.
type DisplayInfo struct {
	BookingID   string    `json:"booking_id"`
	Zone        string    `json:"timezone"`
	Start       time.Time `json:"start_time"`
	End         time.Time `json:"end_time"`
	DSTMismatch bool      `json:"dst_mismatch"`
	Warning     string    `json:"warning,omitempty"`
}

// GetBookingDisplayInfo converts b into the viewer's local zone and flags
// sessions whose endpoints fall on different sides of a DST change.
func (s *Service) GetBookingDisplayInfo(b Booking, viewerCountryISONum int) (DisplayInfo, error) {
	name, err := s.zones.Resolve(viewerCountryISONum)
	if err != nil {
		return DisplayInfo{}, err
	}
	loc, err := s.zones.ResolveLocation(viewerCountryISONum)
	if err != nil {
		return DisplayInfo{}, err
	}
	start := b.StudentStart.In(loc)
	end := b.StudentEnd.In(loc)
	info := DisplayInfo{
		BookingID: b.ID,
		Zone:      name,
		Start:     start,
		End:       end,
	}
	if start.IsDST() != end.IsDST() {
		_, so := start.Zone()
		_, eo := end.Zone()
		shift, dir := (eo-so)/60, "forward"
		if shift < 0 {
			shift, dir = -shift, "back"
		}
		info.DSTMismatch = true
		info.Warning = fmt.Sprintf("Session crosses a daylight saving change in %s: local clocks move %s %d minutes between %s and %s",
			name, dir, shift, start.Format("15:04 MST"), end.Format("15:04 MST"))
	}
	return info, nil
}
