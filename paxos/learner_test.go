package paxos

import "testing"

func TestLearnerResolvesOnQuorumOfAccepted(t *testing.T) {
	m := &isolatedMessenger{}
	l := NewLearner(m, 2)
	id := ProposalID{Number: 1, NodeUID: "A"}

	l.RecvAccepted("A", id, "v1")
	if l.Resolved() {
		t.Fatalf("one acceptance must not resolve a quorum of 2")
	}

	l.RecvAccepted("B", id, "v1")
	if !l.Resolved() {
		t.Fatalf("expected resolution once quorum reached")
	}
	if len(m.resolutions) != 1 || m.resolutions[0].value != "v1" {
		t.Fatalf("expected OnResolution(v1) exactly once, got %v", m.resolutions)
	}
}

func TestLearnerIgnoresMessagesAfterResolution(t *testing.T) {
	m := &isolatedMessenger{}
	l := NewLearner(m, 2)
	id := ProposalID{Number: 1, NodeUID: "A"}
	l.RecvAccepted("A", id, "v1")
	l.RecvAccepted("B", id, "v1")

	l.RecvAccepted("C", id, "v1")

	if len(m.resolutions) != 1 {
		t.Fatalf("expected OnResolution to fire exactly once, got %d", len(m.resolutions))
	}
}

func TestLearnerDiscardsStaleAcceptorReport(t *testing.T) {
	m := &isolatedMessenger{}
	l := NewLearner(m, 3)
	high := ProposalID{Number: 5, NodeUID: "A"}
	low := ProposalID{Number: 2, NodeUID: "A"}

	l.RecvAccepted("X", high, "v1")
	l.RecvAccepted("X", low, "v0") // stale replay from the same acceptor, must be ignored
	l.RecvAccepted("Y", high, "v1")
	l.RecvAccepted("Z", high, "v1")

	if !l.Resolved() {
		t.Fatalf("expected quorum on the high proposal id to still resolve")
	}
}

func TestLearnerAcceptorSwitchingVote(t *testing.T) {
	m := &isolatedMessenger{}
	l := NewLearner(m, 2)
	p1 := ProposalID{Number: 1, NodeUID: "A"}
	p2 := ProposalID{Number: 2, NodeUID: "B"}

	l.RecvAccepted("X", p1, "v1")
	l.RecvAccepted("X", p2, "v2") // X switches its vote to a higher proposal
	l.RecvAccepted("Y", p2, "v2")

	if !l.Resolved() {
		t.Fatalf("expected resolution on p2 once two acceptors converge on it")
	}
	id, val, ok := l.Resolution()
	if !ok || id != p2 || val != "v2" {
		t.Fatalf("expected resolution (p2, v2), got (%s, %v, %v)", id, val, ok)
	}
}
