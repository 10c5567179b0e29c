// Package policy maps roles to the console sections and actions they see.
// It is a flat lookup table: roles do not inherit from each other.
package policy

import "campus-rms-console/internal/model"

// Section is a top-level area of the console.
type Section string

const (
	SectionUsers     Section = "USERS"
	SectionResources Section = "RESOURCES"
	SectionBookings  Section = "BOOKINGS"
)

// Action is the primary call to action shown on the dashboard.
type Action string

const (
	ActionAddResource Action = "ADD_RESOURCE"
	ActionNewBooking  Action = "NEW_BOOKING"
)

type entry struct {
	sections []Section
	primary  Action
}

var table = map[model.Role]entry{
	model.RoleAdmin: {
		sections: []Section{SectionUsers, SectionResources, SectionBookings},
		primary:  ActionAddResource,
	},
	model.RoleStaff: {
		sections: []Section{SectionResources, SectionBookings},
		primary:  ActionAddResource,
	},
	model.RoleStudent: {
		sections: []Section{SectionBookings},
		primary:  ActionNewBooking,
	},
}

func lookup(role model.Role) entry {
	if e, ok := table[role]; ok {
		return e
	}
	return table[model.RoleStudent]
}

// PermittedSections returns the sections visible to role, in display order.
// Unknown roles are treated as STUDENT.
func PermittedSections(role model.Role) []Section {
	e := lookup(role)
	out := make([]Section, len(e.sections))
	copy(out, e.sections)
	return out
}

// PrimaryAction returns the dashboard's main action for role.
func PrimaryAction(role model.Role) Action {
	return lookup(role).primary
}

// Allows reports whether role may open section.
func Allows(role model.Role, section Section) bool {
	for _, s := range lookup(role).sections {
		if s == section {
			return true
		}
	}
	return false
}

// CanModerate reports whether role may approve or reject bookings.
func CanModerate(role model.Role) bool {
	return role == model.RoleStaff || role == model.RoleAdmin
}

// CanViewBooking reports whether who may see b.
func CanViewBooking(who model.Identity, b model.Booking) bool {
	return CanModerate(who.Role) || b.UserID == who.ID
}

// CanEditBooking reports whether who may change or delete b. Owners may only
// touch their bookings while they are still pending.
func CanEditBooking(who model.Identity, b model.Booking) bool {
	if CanModerate(who.Role) {
		return true
	}
	return b.UserID == who.ID && b.Status == model.BookingPending
}

// NavItem is one entry of the console navigation.
type NavItem struct {
	Section Section `json:"section"`
	Label   string  `json:"label"`
	Path    string  `json:"path"`
}

// Navigation is the view model the front end renders its menu from.
type Navigation struct {
	Role          model.Role `json:"role"`
	Sections      []Section  `json:"sections"`
	Items         []NavItem  `json:"items"`
	PrimaryAction Action     `json:"primary_action"`
	CanModerate   bool       `json:"can_moderate"`
}

var navItems = map[Section]NavItem{
	SectionUsers:     {Section: SectionUsers, Label: "Users", Path: "/users"},
	SectionResources: {Section: SectionResources, Label: "Resources", Path: "/resources"},
	SectionBookings:  {Section: SectionBookings, Label: "Bookings", Path: "/bookings"},
}

// NavigationFor builds the navigation view model of role.
func NavigationFor(role model.Role) Navigation {
	sections := PermittedSections(role)
	items := make([]NavItem, 0, len(sections))
	for _, s := range sections {
		items = append(items, navItems[s])
	}
	return Navigation{
		Role:          role,
		Sections:      sections,
		Items:         items,
		PrimaryAction: PrimaryAction(role),
		CanModerate:   CanModerate(role),
	}
}
