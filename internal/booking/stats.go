package booking

import "campus-rms-console/internal/model"

// RecentLimit is how many bookings the dashboard lists.
const RecentLimit = 5

// Stats are the dashboard counters.
type Stats struct {
	TotalBookings      int             `json:"total_bookings"`
	TotalResources     int             `json:"total_resources"`
	TotalUsers         int             `json:"total_users"`
	PendingBookings    int             `json:"pending_bookings"`
	MyBookings         int             `json:"my_bookings"`
	MyPendingBookings  int             `json:"my_pending_bookings"`
	MyApprovedBookings int             `json:"my_approved_bookings"`
	MyRejectedBookings int             `json:"my_rejected_bookings"`
	RecentBookings     []model.Booking `json:"recent_bookings"`
}

// Summarize computes dashboard statistics for viewer. Bookings are expected in
// the backend's order (newest first). Students see their own recent bookings,
// everyone else sees the latest bookings overall.
func Summarize(viewer model.Identity, bookings []model.Booking, resources, users int) Stats {
	st := Stats{
		TotalBookings:  len(bookings),
		TotalResources: resources,
		TotalUsers:     users,
	}

	var mine []model.Booking
	for _, b := range bookings {
		if b.Status == model.BookingPending {
			st.PendingBookings++
		}
		if b.UserID != viewer.ID {
			continue
		}
		mine = append(mine, b)
		switch b.Status {
		case model.BookingPending:
			st.MyPendingBookings++
		case model.BookingApproved:
			st.MyApprovedBookings++
		case model.BookingRejected:
			st.MyRejectedBookings++
		}
	}
	st.MyBookings = len(mine)

	recent := bookings
	if viewer.Role == model.RoleStudent {
		recent = mine
	}
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	st.RecentBookings = append([]model.Booking{}, recent...)
	return st
}

// OwnedBy filters bookings down to those of identity id.
func OwnedBy(bookings []model.Booking, id int64) []model.Booking {
	out := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.UserID == id {
			out = append(out, b)
		}
	}
	return out
}
