// Package httpmessenger implements paxos.Messenger over plain HTTP POSTs,
// following the teacher's sendPartialRequest fan-out-then-collect pattern:
// every broadcast opens one goroutine per peer, each pushing its raw
// response body (or nil, on failure) into a shared buffered channel.
package httpmessenger

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"time"

	"paxoscore/paxos"
	"paxoscore/internal/transport/wire"
)

// Messenger sends every outbound paxos.Messenger event as a JSON POST to
// the peer addresses in Peers, and answers the up-signals by invoking the
// corresponding callback, if set.
type Messenger struct {
	NodeUID string
	Peers   []string // base URLs of every node in the instance, including self
	Client  *http.Client

	OnLeadership func()
	OnResolve    func(proposalID paxos.ProposalID, value paxos.Value)
}

// New constructs a Messenger with a client timeout, following the teacher's
// http.Client{Timeout: ...} construction in paxos/proposer.go.
func New(nodeUID string, peers []string, timeout time.Duration) *Messenger {
	return &Messenger{
		NodeUID: nodeUID,
		Peers:   peers,
		Client:  &http.Client{Timeout: timeout},
	}
}

func peerURL(base, path string) string {
	return base + path
}

// broadcast POSTs message to every peer, discarding responses: every
// Send* event in this protocol is fire-and-forget from the sender's
// perspective, acknowledgement arrives later as its own inbound event.
func (m *Messenger) broadcast(path string, message interface{}) {
	ch := make(chan []byte, len(m.Peers))
	for _, peer := range m.Peers {
		url := peerURL(peer, path)
		go sendPartialRequest(m.Client, url, ch, message)
	}
	for range m.Peers {
		<-ch
	}
}

func (m *Messenger) unicast(peer, path string, message interface{}) {
	ch := make(chan []byte, 1)
	sendPartialRequest(m.Client, peerURL(peer, path), ch, message)
	<-ch
}

// sendPartialRequest sends one HTTP POST and pushes the raw response body
// (or nil, if the peer is unreachable) into resBuffer.
func sendPartialRequest(client *http.Client, url string, resBuffer chan []byte, message interface{}) {
	jsonContents, err := json.Marshal(message)
	if err != nil {
		log.Printf("[TRANSPORT] -> failed to marshal outbound message for %s: %v", url, err)
		resBuffer <- nil
		return
	}

	res, err := client.Post(url, "application/json", bytes.NewBuffer(jsonContents))
	if res != nil {
		defer res.Body.Close()
	}
	if err != nil {
		log.Printf("[TRANSPORT] -> %s is not reachable, dropping send", url)
		resBuffer <- nil
		return
	}
	body, _ := ioutil.ReadAll(res.Body)
	resBuffer <- body
}

func (m *Messenger) SendPrepare(proposalID paxos.ProposalID) {
	log.Printf("[TRANSPORT] -> broadcasting prepare %s", proposalID)
	m.broadcast("/acceptor/receive_prepare", wire.PrepareMsg{
		FromUID:    wire.FromUID{FromUID: m.NodeUID},
		ProposalID: wire.FromCore(proposalID),
	})
}

func (m *Messenger) SendPromise(toUID string, proposalID, previousID paxos.ProposalID, acceptedValue paxos.Value) {
	log.Printf("[TRANSPORT] -> sending promise %s to %s", proposalID, toUID)
	m.unicast(m.peerAddr(toUID), "/proposer/receive_promise", wire.PromiseMsg{
		FromUID:       wire.FromUID{FromUID: m.NodeUID},
		ProposalID:    wire.FromCore(proposalID),
		PreviousID:    wire.FromCore(previousID),
		AcceptedValue: acceptedValue,
	})
}

func (m *Messenger) SendPrepareNack(toUID string, proposalID, promisedID paxos.ProposalID) {
	log.Printf("[TRANSPORT] -> sending prepare-nack %s to %s", proposalID, toUID)
	m.unicast(m.peerAddr(toUID), "/proposer/receive_prepare_nack", wire.PrepareNackMsg{
		FromUID:    wire.FromUID{FromUID: m.NodeUID},
		ProposalID: wire.FromCore(proposalID),
		PromisedID: wire.FromCore(promisedID),
	})
}

func (m *Messenger) SendAccept(proposalID paxos.ProposalID, value paxos.Value) {
	log.Printf("[TRANSPORT] -> broadcasting accept %s", proposalID)
	m.broadcast("/acceptor/receive_accept", wire.AcceptMsg{
		FromUID:    wire.FromUID{FromUID: m.NodeUID},
		ProposalID: wire.FromCore(proposalID),
		Value:      value,
	})
}

func (m *Messenger) SendAcceptNack(toUID string, proposalID, promisedID paxos.ProposalID) {
	log.Printf("[TRANSPORT] -> sending accept-nack %s to %s", proposalID, toUID)
	m.unicast(m.peerAddr(toUID), "/proposer/receive_accept_nack", wire.AcceptNackMsg{
		FromUID:    wire.FromUID{FromUID: m.NodeUID},
		ProposalID: wire.FromCore(proposalID),
		PromisedID: wire.FromCore(promisedID),
	})
}

func (m *Messenger) SendAccepted(toUID string, proposalID paxos.ProposalID, acceptedValue paxos.Value) {
	log.Printf("[TRANSPORT] -> broadcasting accepted %s", proposalID)
	m.broadcast("/learner/receive_accepted", wire.AcceptedMsg{
		FromUID:       wire.FromUID{FromUID: m.NodeUID},
		ProposalID:    wire.FromCore(proposalID),
		AcceptedValue: acceptedValue,
	})
}

func (m *Messenger) OnLeadershipAcquired() {
	log.Printf("[TRANSPORT] -> leadership acquired")
	if m.OnLeadership != nil {
		m.OnLeadership()
	}
}

func (m *Messenger) OnResolution(proposalID paxos.ProposalID, value paxos.Value) {
	log.Printf("[TRANSPORT] -> resolution reached: %s = %v", proposalID, value)
	if m.OnResolve != nil {
		m.OnResolve(proposalID, value)
	}
}

// peerAddr resolves a node uid to a peer base URL. The reference transport
// assumes node uids double as indices into Peers in config order; a real
// deployment would carry an explicit uid->address map, which is the kind of
// peer-addressing concern spec.md places outside the core's scope.
func (m *Messenger) peerAddr(nodeUID string) string {
	for _, peer := range m.Peers {
		if peer == nodeUID {
			return peer
		}
	}
	return nodeUID
}
