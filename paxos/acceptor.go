package paxos

import "log"

// Acceptor holds the durable promise/accept state of a single Paxos
// instance. Its two recv_* methods are idempotent: replaying a message the
// acceptor has already seen never changes its externally-visible decision.
type Acceptor struct {
	messenger Messenger

	promisedID    ProposalID
	previousID    ProposalID
	acceptedID    ProposalID
	acceptedValue Value
}

// NewAcceptor constructs an Acceptor bound to messenger with empty state.
func NewAcceptor(messenger Messenger) *Acceptor {
	return &Acceptor{messenger: messenger}
}

// RecvPrepare handles a Prepare message from the network.
func (a *Acceptor) RecvPrepare(fromUID string, proposalID ProposalID) {
	switch {
	case proposalID.Equal(a.promisedID):
		// Duplicate of the currently promised proposal: answer again
		// without mutating state.
		log.Printf("[ACCEPTOR] -> re-promising duplicate %s to %s", proposalID, fromUID)
		a.messenger.SendPromise(fromUID, proposalID, a.previousID, a.acceptedValue)

	case proposalID.Greater(a.promisedID):
		a.previousID = a.promisedID
		a.promisedID = proposalID
		log.Printf("[ACCEPTOR] -> promising %s to %s", proposalID, fromUID)
		a.messenger.SendPromise(fromUID, proposalID, a.previousID, a.acceptedValue)

	default:
		log.Printf("[ACCEPTOR] -> nacking prepare %s from %s, already promised %s", proposalID, fromUID, a.promisedID)
		a.messenger.SendPrepareNack(fromUID, proposalID, a.promisedID)
	}
}

// RecvAcceptRequest handles an Accept! message from the network.
func (a *Acceptor) RecvAcceptRequest(fromUID string, proposalID ProposalID, value Value) {
	if proposalID.GreaterOrEqual(a.promisedID) {
		a.acceptedValue = value
		a.acceptedID = proposalID
		a.promisedID = proposalID
		log.Printf("[ACCEPTOR] -> accepted %s from %s", proposalID, fromUID)
		a.messenger.SendAccepted(fromUID, proposalID, a.acceptedValue)
	} else {
		log.Printf("[ACCEPTOR] -> nacking accept %s from %s, already promised %s", proposalID, fromUID, a.promisedID)
		a.messenger.SendAcceptNack(fromUID, proposalID, a.promisedID)
	}
}

// PromisedID reports the highest proposal id this acceptor has promised.
func (a *Acceptor) PromisedID() ProposalID {
	return a.promisedID
}

// AcceptedValue reports the value this acceptor most recently accepted, or
// nil if none.
func (a *Acceptor) AcceptedValue() Value {
	return a.acceptedValue
}

// AcceptorSnapshot is the serializable subset of Acceptor state that must
// survive a process restart for the safety invariants to hold across it.
type AcceptorSnapshot struct {
	PromisedID    ProposalID
	PreviousID    ProposalID
	AcceptedID    ProposalID
	AcceptedValue Value
}

// Snapshot captures the acceptor's durable fields.
func (a *Acceptor) Snapshot() AcceptorSnapshot {
	return AcceptorSnapshot{
		PromisedID:    a.promisedID,
		PreviousID:    a.previousID,
		AcceptedID:    a.acceptedID,
		AcceptedValue: a.acceptedValue,
	}
}

// Restore overwrites the acceptor's durable fields from a prior Snapshot.
// It must be called before the acceptor processes any message, and never
// afterwards — Restore does not merge, it replaces.
func (a *Acceptor) Restore(s AcceptorSnapshot) {
	a.promisedID = s.PromisedID
	a.previousID = s.PreviousID
	a.acceptedID = s.AcceptedID
	a.acceptedValue = s.AcceptedValue
}
