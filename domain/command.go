package domain

// Operation is the closed union of inbound client calls. The transport
// decodes each named remote call into exactly one of the structs below and
// hands it to the router; no reflection-based dispatch happens anywhere.
type Operation interface {
	Target() string
}

type SendMessage struct {
	DisplayName string
	Text        string
}

func (SendMessage) Target() string { return "SendMessage" }

type SendGroupMessage struct {
	DisplayName string
	GroupName   string
	Text        string
}

func (SendGroupMessage) Target() string { return "SendGroupMessage" }

type JoinGroup struct {
	GroupName string
}

func (JoinGroup) Target() string { return "JoinGroup" }

type LeaveGroup struct {
	GroupName string
}

func (LeaveGroup) Target() string { return "LeaveGroup" }

type GetAvailableGroups struct{}

func (GetAvailableGroups) Target() string { return "GetAvailableGroups" }

type RegisterUsername struct {
	DisplayName string
}

func (RegisterUsername) Target() string { return "RegisterUsername" }

// Ping is a latency probe. It returns immediately and changes no state.
// Echo is the wire name established by the first client; the server also
// accepts Ping as an alias.
type Ping struct{}

func (Ping) Target() string { return "Echo" }
