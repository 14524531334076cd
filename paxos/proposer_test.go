package paxos

import "testing"

func TestProposerPrepareIncrementsProposalNumber(t *testing.T) {
	m := &isolatedMessenger{}
	p := NewProposer(m, "A", 2)

	p.Prepare(true)
	p.Prepare(true)

	if len(m.prepares) != 2 {
		t.Fatalf("expected 2 prepares, got %d", len(m.prepares))
	}
	if !m.prepares[1].Greater(m.prepares[0]) {
		t.Fatalf("expected second prepare %s to exceed first %s", m.prepares[1], m.prepares[0])
	}
}

func TestProposerResendPrepareKeepsSameID(t *testing.T) {
	m := &isolatedMessenger{}
	p := NewProposer(m, "A", 2)

	p.Prepare(true)
	first := m.prepares[0]
	p.Prepare(false)

	if len(m.prepares) != 2 || m.prepares[1] != first {
		t.Fatalf("expected retransmit of %s, got %v", first, m.prepares)
	}
}

func TestProposerObserveProposalAdvancesCounter(t *testing.T) {
	m := &isolatedMessenger{}
	p := NewProposer(m, "A", 2)

	p.ObserveProposal("B", ProposalID{Number: 5, NodeUID: "B"})
	p.Prepare(true)

	if m.prepares[0].Number <= 5 {
		t.Fatalf("expected proposal number above observed 5, got %d", m.prepares[0].Number)
	}
}

func TestProposerObserveProposalIgnoresOwnMessages(t *testing.T) {
	m := &isolatedMessenger{}
	p := NewProposer(m, "A", 2)
	p.Prepare(true) // proposalID = (1, A)

	p.ObserveProposal("A", ProposalID{Number: 99, NodeUID: "A"})
	p.Prepare(true)

	if m.prepares[1].Number != 2 {
		t.Fatalf("expected own traffic to be ignored, got number %d", m.prepares[1].Number)
	}
}

func TestProposerQuorumOfPromisesGrantsLeadership(t *testing.T) {
	m := &isolatedMessenger{}
	p := NewProposer(m, "A", 2)
	p.Prepare(true)
	id := p.ProposalID()

	p.RecvPromise("B", id, AbsentProposalID, nil)
	if p.Leader() {
		t.Fatalf("leadership should require a full quorum, not a single promise")
	}

	p.SetProposal("v1")
	p.RecvPromise("C", id, AbsentProposalID, nil)

	if !p.Leader() {
		t.Fatalf("expected leadership after quorum of promises")
	}
	if m.leaderAcquired != 1 {
		t.Fatalf("expected OnLeadershipAcquired exactly once, got %d", m.leaderAcquired)
	}
	if len(m.accepts) != 1 || m.accepts[0].value != "v1" {
		t.Fatalf("expected an Accept! broadcast for v1, got %v", m.accepts)
	}
}

func TestProposerDuplicatePromiseIsIgnored(t *testing.T) {
	m := &isolatedMessenger{}
	p := NewProposer(m, "A", 2)
	p.Prepare(true)
	id := p.ProposalID()

	p.RecvPromise("B", id, AbsentProposalID, nil)
	p.RecvPromise("B", id, AbsentProposalID, nil)

	if p.Leader() {
		t.Fatalf("two promises from the same acceptor must not satisfy a quorum of 2")
	}
}

func TestProposerAdoptsHighestPreviouslyAcceptedValue(t *testing.T) {
	m := &isolatedMessenger{}
	p := NewProposer(m, "A", 2)
	p.Prepare(true)
	id := p.ProposalID()

	p.RecvPromise("B", id, ProposalID{Number: 1, NodeUID: "X"}, "stale")
	p.RecvPromise("C", id, ProposalID{Number: 3, NodeUID: "Y"}, "fresher")

	if len(m.accepts) != 1 || m.accepts[0].value != "fresher" {
		t.Fatalf("expected the higher-numbered previously-accepted value to win, got %v", m.accepts)
	}
}

func TestProposerIgnoresPromiseForSupersededProposal(t *testing.T) {
	m := &isolatedMessenger{}
	p := NewProposer(m, "A", 2)
	p.Prepare(true)
	stale := p.ProposalID()
	p.Prepare(true) // supersede

	p.RecvPromise("B", stale, AbsentProposalID, nil)
	p.RecvPromise("C", stale, AbsentProposalID, nil)

	if p.Leader() {
		t.Fatalf("promises for a superseded proposal id must never grant leadership")
	}
}

func TestProposerResendAcceptRequiresLeadershipAndValue(t *testing.T) {
	m := &isolatedMessenger{}
	p := NewProposer(m, "A", 1)
	p.Prepare(true)

	p.ResendAccept()
	if len(m.accepts) != 0 {
		t.Fatalf("expected no resend before leadership, got %v", m.accepts)
	}

	p.RecvPromise("B", p.ProposalID(), AbsentProposalID, nil)
	p.ResendAccept()
	if len(m.accepts) != 0 {
		t.Fatalf("expected no resend without a proposed value, got %v", m.accepts)
	}

	p.SetProposal("v")
	m.accepts = nil
	p.ResendAccept()
	if len(m.accepts) != 1 {
		t.Fatalf("expected exactly one resent accept, got %v", m.accepts)
	}
}
