package paxos

import "log"

// Proposer drives the leader-election and value-proposal half of a single
// Paxos instance. It never suspends: every method runs to completion and
// returns, dispatching zero or more outbound events through Messenger
// before doing so.
type Proposer struct {
	messenger   Messenger
	nodeUID     string
	quorumSize  int

	proposedValue      Value
	proposalID         ProposalID
	lastAcceptedID     ProposalID
	nextProposalNumber int64
	promisesRcvd       map[string]bool
	leader             bool
}

// NewProposer constructs a Proposer bound to messenger, identified by
// nodeUID, requiring quorumSize promises/accepts to reach a decision.
func NewProposer(messenger Messenger, nodeUID string, quorumSize int) *Proposer {
	return &Proposer{
		messenger:          messenger,
		nodeUID:            nodeUID,
		quorumSize:         quorumSize,
		nextProposalNumber: 1,
	}
}

// SetProposal assigns the value this node will attempt to get chosen,
// unless a value has already been set. If this node already holds
// leadership, the value is immediately broadcast via Accept!.
func (p *Proposer) SetProposal(value Value) {
	if value == nil {
		panic("paxos: SetProposal called with a nil value")
	}
	if p.proposedValue != nil {
		return
	}
	p.proposedValue = value
	log.Printf("[PROPOSER] -> proposal value set to %v", value)

	if p.leader {
		p.messenger.SendAccept(p.proposalID, value)
	}
}

// Prepare sends a Prepare request to all nodes, the first step toward
// acquiring leadership. When incrementProposalNumber is true a proposal id
// higher than any previously observed is minted; otherwise the current
// proposal id is simply retransmitted.
func (p *Proposer) Prepare(incrementProposalNumber bool) {
	if incrementProposalNumber {
		p.leader = false
		p.promisesRcvd = make(map[string]bool)
		p.proposalID = ProposalID{Number: p.nextProposalNumber, NodeUID: p.nodeUID}
		p.nextProposalNumber++
		log.Printf("[PROPOSER] -> preparing %s", p.proposalID)
	}

	p.messenger.SendPrepare(p.proposalID)
}

// ObserveProposal lets a Proposer watch proposal ids flowing through a
// co-located Acceptor/Learner so its next proposal number stays ahead of
// anything already on the network, avoiding a guaranteed round-trip NACK.
func (p *Proposer) ObserveProposal(fromUID string, proposalID ProposalID) {
	if fromUID == p.nodeUID {
		return
	}
	if proposalID.GreaterOrEqual(ProposalID{Number: p.nextProposalNumber, NodeUID: p.nodeUID}) {
		p.nextProposalNumber = proposalID.Number + 1
	}
}

// RecvPrepareNack handles an explicit NACK in response to a Prepare.
func (p *Proposer) RecvPrepareNack(fromUID string, proposalID, promisedID ProposalID) {
	p.ObserveProposal(fromUID, promisedID)
}

// RecvAcceptNack handles an explicit NACK in response to an Accept!. The
// core takes no action here by design: losing an Accept! round does not by
// itself justify starting a new round, and the decision to retry belongs to
// the host's liveness policy.
func (p *Proposer) RecvAcceptNack(fromUID string, proposalID, promisedID ProposalID) {
}

// ResendAccept retransmits an Accept! message iff this node is the leader
// and holds a proposal value.
func (p *Proposer) ResendAccept() {
	if p.leader && p.proposedValue != nil {
		p.messenger.SendAccept(p.proposalID, p.proposedValue)
	}
}

// RecvPromise handles a Promise message from the network.
func (p *Proposer) RecvPromise(fromUID string, proposalID, prevAcceptedID ProposalID, prevAcceptedValue Value) {
	if proposalID.Greater(ProposalID{Number: p.nextProposalNumber - 1, NodeUID: p.nodeUID}) {
		p.nextProposalNumber = proposalID.Number + 1
	}

	if p.leader || !proposalID.Equal(p.proposalID) || p.promisesRcvd[fromUID] {
		return
	}

	p.promisesRcvd[fromUID] = true

	if prevAcceptedID.Greater(p.lastAcceptedID) {
		p.lastAcceptedID = prevAcceptedID
		if prevAcceptedValue != nil {
			p.proposedValue = prevAcceptedValue
		}
	}

	if len(p.promisesRcvd) == p.quorumSize {
		p.leader = true
		log.Printf("[PROPOSER] -> quorum of promises reached for %s, leadership acquired", p.proposalID)
		p.messenger.OnLeadershipAcquired()

		if p.proposedValue != nil {
			p.messenger.SendAccept(p.proposalID, p.proposedValue)
		}
	}
}

// Leader reports whether this proposer currently believes it holds
// leadership of the instance.
func (p *Proposer) Leader() bool {
	return p.leader
}

// ProposalID reports the proposal id currently in flight, or the absent
// sentinel if Prepare has never been called.
func (p *Proposer) ProposalID() ProposalID {
	return p.proposalID
}
