package model

// ResourceType is the kind of a bookable campus asset.
type ResourceType string

const (
	ResourceLab       ResourceType = "LAB"
	ResourceClassroom ResourceType = "CLASSROOM"
	ResourceEventHall ResourceType = "EVENT_HALL"
	ResourceComputer  ResourceType = "COMPUTER"
)

// ResourceTypes lists every resource type in display order.
var ResourceTypes = []ResourceType{ResourceLab, ResourceClassroom, ResourceEventHall, ResourceComputer}

func (t ResourceType) Valid() bool {
	for _, known := range ResourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ResourceStatus tells whether a resource can currently be booked.
type ResourceStatus string

const (
	ResourceAvailable   ResourceStatus = "AVAILABLE"
	ResourceUnavailable ResourceStatus = "UNAVAILABLE"
)

func (s ResourceStatus) Valid() bool {
	return s == ResourceAvailable || s == ResourceUnavailable
}

// Resource is a bookable campus asset.
type Resource struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Type     ResourceType   `json:"type"`
	Capacity int            `json:"capacity"`
	Location string         `json:"location"`
	Status   ResourceStatus `json:"status"`
}

// ResourceInput is the write shape for creating or fully replacing a resource.
type ResourceInput struct {
	Name     string         `json:"name"`
	Type     ResourceType   `json:"type"`
	Capacity int            `json:"capacity"`
	Location string         `json:"location"`
	Status   ResourceStatus `json:"status"`
}
