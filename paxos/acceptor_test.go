package paxos

import "testing"

func TestAcceptorPromisesHigherProposal(t *testing.T) {
	m := &isolatedMessenger{}
	a := NewAcceptor(m)

	a.RecvPrepare("B", ProposalID{Number: 1, NodeUID: "B"})

	if len(m.promises) != 1 {
		t.Fatalf("expected a promise, got %v / %v", m.promises, m.prepareNacks)
	}
	if a.PromisedID() != (ProposalID{Number: 1, NodeUID: "B"}) {
		t.Fatalf("expected promised id to update, got %s", a.PromisedID())
	}
}

func TestAcceptorNacksLowerProposal(t *testing.T) {
	m := &isolatedMessenger{}
	a := NewAcceptor(m)
	a.RecvPrepare("B", ProposalID{Number: 5, NodeUID: "B"})

	m.promises = nil
	a.RecvPrepare("C", ProposalID{Number: 3, NodeUID: "C"})

	if len(m.promises) != 0 || len(m.prepareNacks) != 1 {
		t.Fatalf("expected a single nack, got promises=%v nacks=%v", m.promises, m.prepareNacks)
	}
	if m.prepareNacks[0].promisedID.Number != 5 {
		t.Fatalf("expected nack to report promised number 5, got %d", m.prepareNacks[0].promisedID.Number)
	}
}

func TestAcceptorReplaysDuplicatePrepareWithoutMutating(t *testing.T) {
	m := &isolatedMessenger{}
	a := NewAcceptor(m)
	id := ProposalID{Number: 1, NodeUID: "B"}
	a.RecvPrepare("B", id)
	before := a.Snapshot()

	a.RecvPrepare("B", id)

	if a.Snapshot() != before {
		t.Fatalf("duplicate prepare must not mutate acceptor state")
	}
	if len(m.promises) != 2 {
		t.Fatalf("expected duplicate prepare answered again, got %v", m.promises)
	}
}

func TestAcceptorAcceptsValueAtOrAbovePromise(t *testing.T) {
	m := &isolatedMessenger{}
	a := NewAcceptor(m)
	id := ProposalID{Number: 1, NodeUID: "B"}
	a.RecvPrepare("B", id)

	a.RecvAcceptRequest("B", id, "v1")

	if len(m.accepteds) != 1 || m.accepteds[0].value != "v1" {
		t.Fatalf("expected accepted v1, got %v", m.accepteds)
	}
	if a.AcceptedValue() != "v1" {
		t.Fatalf("expected acceptor to record v1, got %v", a.AcceptedValue())
	}
}

func TestAcceptorNacksAcceptBelowPromise(t *testing.T) {
	m := &isolatedMessenger{}
	a := NewAcceptor(m)
	a.RecvPrepare("B", ProposalID{Number: 5, NodeUID: "B"})

	a.RecvAcceptRequest("C", ProposalID{Number: 2, NodeUID: "C"}, "late")

	if len(m.accepteds) != 0 || len(m.acceptNacks) != 1 {
		t.Fatalf("expected the stale accept to be nacked, got accepted=%v nacks=%v", m.accepteds, m.acceptNacks)
	}
	if a.AcceptedValue() != nil {
		t.Fatalf("expected no value accepted, got %v", a.AcceptedValue())
	}
}

func TestAcceptorMonotonicPromisedID(t *testing.T) {
	m := &isolatedMessenger{}
	a := NewAcceptor(m)
	ids := []ProposalID{
		{Number: 1, NodeUID: "A"},
		{Number: 3, NodeUID: "B"},
		{Number: 2, NodeUID: "C"}, // lower, must not move promisedID backwards
	}
	for _, id := range ids {
		a.RecvPrepare("x", id)
	}
	if a.PromisedID() != (ProposalID{Number: 3, NodeUID: "B"}) {
		t.Fatalf("expected promised id to stay at the highest seen, got %s", a.PromisedID())
	}
}

func TestAcceptorSnapshotRoundTrip(t *testing.T) {
	m := &isolatedMessenger{}
	a := NewAcceptor(m)
	a.RecvPrepare("B", ProposalID{Number: 1, NodeUID: "B"})
	a.RecvAcceptRequest("B", ProposalID{Number: 1, NodeUID: "B"}, "v1")

	snap := a.Snapshot()

	restored := NewAcceptor(m)
	restored.Restore(snap)

	if restored.PromisedID() != a.PromisedID() || restored.AcceptedValue() != a.AcceptedValue() {
		t.Fatalf("restored acceptor does not match snapshot source")
	}
}
