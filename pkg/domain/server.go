package domain

// DefaultRegion labels the online-servers counter when no region is configured.
const DefaultRegion = "montreal"

// ServerStatus is the wire representation of the online-servers counter.
type ServerStatus struct {
	Region string `json:"region"`
	Online int    `json:"online"`
}
