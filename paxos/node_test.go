package paxos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeRecvPrepareObservesBeforeDelegating(t *testing.T) {
	m := &isolatedMessenger{}
	n := NewNode(m, "A", 2)

	n.RecvPrepare("B", ProposalID{Number: 7, NodeUID: "B"})
	n.Prepare(true)

	require.Greater(t, n.ProposalID().Number, int64(7),
		"a co-located proposer must mint a number above anything observed via RecvPrepare")
}

func TestNodeChangeQuorumSizeAffectsProposerAndLearner(t *testing.T) {
	m := &isolatedMessenger{}
	n := NewNode(m, "A", 3)

	n.ChangeQuorumSize(1)
	n.Prepare(true)
	n.RecvPromise("B", n.ProposalID(), AbsentProposalID, nil)

	require.True(t, n.Leader(), "quorum of 1 should grant leadership after a single promise")
}

func TestNodeRecoverReattachesMessenger(t *testing.T) {
	m1 := &isolatedMessenger{}
	n := NewNode(m1, "A", 2)
	n.RecvPrepare("B", ProposalID{Number: 1, NodeUID: "B"})
	snap := n.Acceptor.Snapshot()

	restored := NewNode(nil, "A", 2)
	restored.Acceptor.Restore(snap)
	m2 := &isolatedMessenger{}
	restored.Recover(m2)

	restored.RecvAcceptRequest("B", ProposalID{Number: 1, NodeUID: "B"}, "v1")
	require.Len(t, m2.accepteds, 1, "recovered node must route outbound events through the reattached messenger")
}
