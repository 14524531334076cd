package paxos

import "log"

// Node is the common shape where a single network participant plays all
// three Paxos roles at once. It embeds Proposer, Acceptor, and Learner so
// their methods are promoted directly onto Node, and overrides RecvPrepare
// to additionally feed the co-located Proposer's proposal counter.
type Node struct {
	*Proposer
	*Acceptor
	*Learner

	messenger Messenger
	nodeUID   string
}

// NewNode constructs a Node playing all three roles against messenger,
// identified by nodeUID, requiring quorumSize to reach any decision.
func NewNode(messenger Messenger, nodeUID string, quorumSize int) *Node {
	return &Node{
		Proposer:  NewProposer(messenger, nodeUID, quorumSize),
		Acceptor:  NewAcceptor(messenger),
		Learner:   NewLearner(messenger, quorumSize),
		messenger: messenger,
		nodeUID:   nodeUID,
	}
}

// ChangeQuorumSize updates the quorum size used by both the Proposer and
// Learner roles. The new size is compared against the counts the next time
// a promise or Accepted message is counted, including in the current round;
// counts already collected are not re-checked when the size changes.
func (n *Node) ChangeQuorumSize(quorumSize int) {
	n.Proposer.quorumSize = quorumSize
	n.Learner.quorumSize = quorumSize
	log.Printf("[NODE] -> quorum size changed to %d", quorumSize)
}

// RecvPrepare overrides the embedded Acceptor's method: a co-located
// Proposer observes every Prepare that passes through before the Acceptor
// answers it, so the Proposer's next proposal number stays ahead of
// anything already circulating.
func (n *Node) RecvPrepare(fromUID string, proposalID ProposalID) {
	n.Proposer.ObserveProposal(fromUID, proposalID)
	n.Acceptor.RecvPrepare(fromUID, proposalID)
}

// NodeUID reports the identifier this node was constructed with.
func (n *Node) NodeUID() string {
	return n.nodeUID
}

// Recover re-attaches a Messenger after a Node has been restored from a
// persisted snapshot. Hosts that serialize a Node must strip the Messenger
// field first (it is rarely itself serializable) and call Recover once a
// live Messenger is available again, before feeding the node any message.
func (n *Node) Recover(messenger Messenger) {
	n.messenger = messenger
	n.Proposer.messenger = messenger
	n.Acceptor.messenger = messenger
	n.Learner.messenger = messenger
}
