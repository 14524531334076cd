// Package wire defines the JSON envelopes exchanged by paxnode processes
// over HTTP. It generalizes the teacher's single free-text GenericMessage
// envelope into one concrete type per outbound Messenger event, so the
// http.Handler on the receiving end can unmarshal straight into the type it
// expects instead of branching on a status string.
package wire

import "paxoscore/paxos"

// ProposalID is the wire representation of paxos.ProposalID. It exists
// separately from the core type so this package never needs to import
// anything from paxos beyond the type itself, and so json field names stay
// stable independent of the core's internal naming.
type ProposalID struct {
	Number  int64  `json:"number"`
	NodeUID string `json:"node_uid"`
}

// ToCore converts a wire ProposalID back to the core representation.
func (p ProposalID) ToCore() paxos.ProposalID {
	return paxos.ProposalID{Number: p.Number, NodeUID: p.NodeUID}
}

// FromCore builds a wire ProposalID from the core representation.
func FromCore(id paxos.ProposalID) ProposalID {
	return ProposalID{Number: id.Number, NodeUID: id.NodeUID}
}

// FromUID is embedded in every envelope below so the HTTP handler on the
// receiving end knows which peer originated the request without relying on
// the connection's source address.
type FromUID struct {
	FromUID string `json:"from_uid"`
}

// PrepareMsg is the envelope for a broadcast Prepare message.
type PrepareMsg struct {
	FromUID
	ProposalID ProposalID `json:"proposal_id"`
}

// PromiseMsg is the envelope for a unicast Promise message.
type PromiseMsg struct {
	FromUID
	ProposalID    ProposalID  `json:"proposal_id"`
	PreviousID    ProposalID  `json:"previous_id"`
	AcceptedValue interface{} `json:"accepted_value,omitempty"`
}

// PrepareNackMsg is the envelope for a unicast Prepare-Nack message.
type PrepareNackMsg struct {
	FromUID
	ProposalID ProposalID `json:"proposal_id"`
	PromisedID ProposalID `json:"promised_id"`
}

// AcceptMsg is the envelope for a broadcast Accept! message.
type AcceptMsg struct {
	FromUID
	ProposalID ProposalID  `json:"proposal_id"`
	Value      interface{} `json:"value"`
}

// AcceptNackMsg is the envelope for a unicast Accept-Nack message.
type AcceptNackMsg struct {
	FromUID
	ProposalID ProposalID `json:"proposal_id"`
	PromisedID ProposalID `json:"promised_id"`
}

// AcceptedMsg is the envelope for a broadcast Accepted message.
type AcceptedMsg struct {
	FromUID
	ProposalID    ProposalID  `json:"proposal_id"`
	AcceptedValue interface{} `json:"accepted_value"`
}
