package paxos

import "log"

// proposalTally tracks, for a single proposal id still in contention, how
// many acceptors have accepted it (acceptCount) and how many acceptors
// currently have it as their *most recent* accepted proposal (retainCount).
// retainCount reaching zero means no acceptor still backs this id, so it is
// dropped from consideration.
type proposalTally struct {
	acceptCount int
	retainCount int
	value       Value
}

// Learner watches Accepted messages flow by and detects, the instant a
// quorum of acceptors has converged on the same proposal id, that the
// instance has reached resolution.
type Learner struct {
	messenger  Messenger
	quorumSize int

	proposals       map[ProposalID]*proposalTally
	acceptors       map[string]ProposalID
	finalValue      Value
	finalProposalID ProposalID
}

// NewLearner constructs a Learner bound to messenger, requiring quorumSize
// acceptors to agree before declaring resolution.
func NewLearner(messenger Messenger, quorumSize int) *Learner {
	return &Learner{messenger: messenger, quorumSize: quorumSize}
}

// RecvAccepted handles an Accepted message from the network.
func (l *Learner) RecvAccepted(fromUID string, proposalID ProposalID, acceptedValue Value) {
	if l.finalValue != nil {
		return // already resolved
	}

	if l.proposals == nil {
		l.proposals = make(map[ProposalID]*proposalTally)
		l.acceptors = make(map[string]ProposalID)
	}

	lastID, seenBefore := l.acceptors[fromUID]
	if seenBefore && !proposalID.Greater(lastID) {
		return // stale or duplicate message from this acceptor
	}

	l.acceptors[fromUID] = proposalID

	if seenBefore {
		if old := l.proposals[lastID]; old != nil {
			old.retainCount--
			if old.retainCount == 0 {
				delete(l.proposals, lastID)
			}
		}
	}

	t, ok := l.proposals[proposalID]
	if !ok {
		t = &proposalTally{value: acceptedValue}
		l.proposals[proposalID] = t
	}

	if !valuesEqual(t.value, acceptedValue) {
		panic("paxos: value mismatch for single proposal id")
	}

	t.acceptCount++
	t.retainCount++

	if t.acceptCount == l.quorumSize {
		l.finalValue = acceptedValue
		l.finalProposalID = proposalID
		l.proposals = nil
		l.acceptors = nil

		log.Printf("[LEARNER] -> resolution reached for %s: %v", proposalID, acceptedValue)
		l.messenger.OnResolution(proposalID, acceptedValue)
	}
}

// Resolved reports whether this learner has observed a quorum converge on
// a single proposal.
func (l *Learner) Resolved() bool {
	return l.finalValue != nil
}

// Resolution reports the resolved proposal id and value. The second return
// value is false until Resolved() is true.
func (l *Learner) Resolution() (ProposalID, Value, bool) {
	return l.finalProposalID, l.finalValue, l.finalValue != nil
}
