package model

// TimeSlots are the nine bookable one-hour windows, in order.
var TimeSlots = []string{
	"08:00 - 09:00",
	"09:00 - 10:00",
	"10:00 - 11:00",
	"11:00 - 12:00",
	"12:00 - 13:00",
	"13:00 - 14:00",
	"14:00 - 15:00",
	"15:00 - 16:00",
	"16:00 - 17:00",
}

// DefaultTimeSlot is preselected on new booking forms.
const DefaultTimeSlot = "09:00 - 10:00"

// IsTimeSlot reports whether s is literally one of TimeSlots.
func IsTimeSlot(s string) bool {
	for _, slot := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}
