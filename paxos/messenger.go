package paxos

// Messenger is the transport-free core's only collaborator. It carries every
// outbound protocol event and the two up-signals the core raises on its
// host. Implementations own addressing, serialization, retransmission, and
// delivery guarantees — none of that is the core's concern.
type Messenger interface {
	// SendPrepare broadcasts a Prepare message for proposalID to all nodes.
	SendPrepare(proposalID ProposalID)

	// SendPromise sends a Promise message for proposalID to toUID,
	// reporting the proposal id this acceptor had promised before
	// proposalID (previousID, absent if none) and the value it most
	// recently accepted (nil if none).
	SendPromise(toUID string, proposalID, previousID ProposalID, acceptedValue Value)

	// SendPrepareNack tells toUID that proposalID lost to promisedID.
	SendPrepareNack(toUID string, proposalID, promisedID ProposalID)

	// SendAccept broadcasts an Accept! message proposing value under
	// proposalID to all nodes.
	SendAccept(proposalID ProposalID, value Value)

	// SendAcceptNack tells toUID that its Accept! request for proposalID
	// lost to promisedID.
	SendAcceptNack(toUID string, proposalID, promisedID ProposalID)

	// SendAccepted broadcasts that this acceptor has accepted proposalID
	// with acceptedValue.
	SendAccepted(toUID string, proposalID ProposalID, acceptedValue Value)

	// OnLeadershipAcquired fires when this proposer believes it has
	// gathered a quorum of promises. Not a guaranteed, exclusive
	// position — another node may still win the instance.
	OnLeadershipAcquired()

	// OnResolution fires exactly once, when this node's learner observes
	// a quorum of acceptors converging on the same proposalID/value.
	OnResolution(proposalID ProposalID, value Value)
}
