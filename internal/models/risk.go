package models

// Message is any payload delivered on a reply subject.
type Message interface {
	MessageType() string
}

const (
	TypeRiskTableSnapshotRequest  = "RiskTableSnapshotRequest"
	TypeRiskTableSnapshotResponse = "RiskTableSnapshotResponse"
)

// RiskTableSnapshotRequest asks the risk system for a snapshot of one projection
type RiskTableSnapshotRequest struct {
	RequestID  string `json:"request_id"`
	Timestamp  int64  `json:"timestamp"`
	Projection string `json:"projection"`
	ReplyTo    string `json:"reply_to,omitempty"`
}

func (*RiskTableSnapshotRequest) MessageType() string { return TypeRiskTableSnapshotRequest }

// RiskCondition is one input field of a snapshot row
type RiskCondition struct {
	ProjectionKey string `json:"projection_key"`
	Value         string `json:"value"`
}

// RiskLimit is one threshold field of a snapshot row
type RiskLimit struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RiskTableSnapshotResponse carries one row of a snapshot stream.
// All responses of a stream share RequestID; the final one has IsLast set.
type RiskTableSnapshotResponse struct {
	RequestID    string          `json:"request_id"`
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"error_message,omitempty"`
	IsLast       bool            `json:"is_last"`
	Conditions   []RiskCondition `json:"conditions,omitempty"`
	Limits       []RiskLimit     `json:"limits,omitempty"`
}

func (*RiskTableSnapshotResponse) MessageType() string { return TypeRiskTableSnapshotResponse }

// FieldNames returns condition projection keys followed by limit names.
func (r *RiskTableSnapshotResponse) FieldNames() []string {
	names := make([]string, 0, len(r.Conditions)+len(r.Limits))
	for _, c := range r.Conditions {
		names = append(names, c.ProjectionKey)
	}
	for _, l := range r.Limits {
		names = append(names, l.Name)
	}
	return names
}

// FieldValues returns condition values followed by limit values, aligned with FieldNames.
func (r *RiskTableSnapshotResponse) FieldValues() []string {
	values := make([]string, 0, len(r.Conditions)+len(r.Limits))
	for _, c := range r.Conditions {
		values = append(values, c.Value)
	}
	for _, l := range r.Limits {
		values = append(values, l.Value)
	}
	return values
}

// UnknownMessage holds a payload of a type this program does not handle
type UnknownMessage struct {
	Type string
	Data []byte
}

func (m *UnknownMessage) MessageType() string { return m.Type }
