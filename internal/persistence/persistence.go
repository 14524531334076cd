// Package persistence satisfies the persistence surface named in spec.md
// §6: saving and restoring an Acceptor's durable fields across a process
// restart. It never reaches into paxos.Node — a host calls Store.Save after
// every state-changing inbound message and Store.Load once at startup,
// before calling Node.Recover.
package persistence

import (
	"encoding/json"
	"fmt"

	"paxoscore/paxos"
)

// Store persists and restores the durable snapshot of a single paxos
// instance, keyed by an arbitrary instance id (the node uid, in practice).
type Store interface {
	Save(instanceID string, snapshot paxos.AcceptorSnapshot) error
	Load(instanceID string) (paxos.AcceptorSnapshot, bool, error)
	Close() error
}

// encode/decode convert a whole snapshot to and from JSON. The sqlitestore
// and redisstore backends do not call them: each stores the proposal ids as
// separate columns or hash fields and JSON-encodes only the accepted value.

func encode(snapshot paxos.AcceptorSnapshot) ([]byte, error) {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode snapshot: %w", err)
	}
	return b, nil
}

func decode(data []byte) (paxos.AcceptorSnapshot, error) {
	var snapshot paxos.AcceptorSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return paxos.AcceptorSnapshot{}, fmt.Errorf("persistence: decode snapshot: %w", err)
	}
	return snapshot, nil
}
