package domain

// GeneralGroup is the distinguished default group. Every connection is
// auto-joined to it on connect and may never leave it.
const GeneralGroup = "General"

// Group is a named broadcast scope with optional catalog metadata.
// Ad-hoc groups joined outside the catalog carry an empty description.
type Group struct {
	Name        string
	Description string
}

// GroupStatus is a catalog entry annotated for one caller.
type GroupStatus struct {
	Name        string
	Description string
	IsJoined    bool
}

// DefaultCatalog returns the statically seeded group list, in display order.
func DefaultCatalog() []Group {
	return []Group{
		{Name: GeneralGroup, Description: "General discussion"},
		{Name: "Technical", Description: "Technical topics"},
		{Name: "Random", Description: "Off-topic chatter"},
	}
}
