package model

// Port statuses and types.
const (
	PortActive   = "active"
	PortInactive = "inactive"

	PortTypeAir  = "air"
	PortTypeSea  = "sea"
	PortTypeLand = "land"
)

// Port is a border crossing point. Ports are referenced by passenger forms
// (port of entry) and by decisions (port of action) and are never deleted
// while referenced; deactivation flips Status to "inactive" instead.
type Port struct {
	ID       uint64 `json:"id"`       // ports.id
	Name     string `json:"name"`     // ports.name
	Code     string `json:"code"`     // ports.code (unique short code, e.g. "PAP")
	Type     string `json:"type"`     // ports.type ("air" | "sea" | "land")
	Location string `json:"location"` // ports.location
	Status   string `json:"status"`   // ports.status ("active" | "inactive")
}
