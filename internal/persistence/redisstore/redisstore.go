// Package redisstore implements persistence.Store over Redis, following
// paxos/queries/redis-queries.go's convention of a composite, colon
// delimited key per record.
package redisstore

import (
	"fmt"
	"log"

	"github.com/go-redis/redis/v7"

	"paxoscore/paxos"
)

const keyPrefix = "paxos:acceptor:"

// Store is a persistence.Store backed by a Redis hash per instance id.
type Store struct {
	client *redis.Client
}

// Open connects to the Redis server at addr.
func Open(addr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping().Err(); err != nil {
		return nil, fmt.Errorf("redisstore: ping %s: %w", addr, err)
	}
	log.Printf("[PERSISTENCE] -> redis store connected to %s", addr)
	return &Store{client: client}, nil
}

func key(instanceID string) string {
	return keyPrefix + instanceID
}

// Save writes the acceptor snapshot for instanceID as a Redis hash,
// overwriting whatever was there before.
func (s *Store) Save(instanceID string, snapshot paxos.AcceptorSnapshot) error {
	valueJSON, err := jsonMarshalValue(snapshot.AcceptedValue)
	if err != nil {
		return fmt.Errorf("redisstore: marshal accepted value: %w", err)
	}

	fields := map[string]interface{}{
		"promised_id_number": snapshot.PromisedID.Number,
		"promised_id_uid":    snapshot.PromisedID.NodeUID,
		"previous_id_number": snapshot.PreviousID.Number,
		"previous_id_uid":    snapshot.PreviousID.NodeUID,
		"accepted_id_number": snapshot.AcceptedID.Number,
		"accepted_id_uid":    snapshot.AcceptedID.NodeUID,
		"accepted_value":     valueJSON,
	}
	if err := s.client.HSet(key(instanceID), fields).Err(); err != nil {
		return fmt.Errorf("redisstore: save %s: %w", instanceID, err)
	}
	return nil
}

// Load fetches the acceptor snapshot for instanceID. The second return
// value is false if no hash exists yet for this instance.
func (s *Store) Load(instanceID string) (paxos.AcceptorSnapshot, bool, error) {
	result, err := s.client.HGetAll(key(instanceID)).Result()
	if err != nil {
		return paxos.AcceptorSnapshot{}, false, fmt.Errorf("redisstore: load %s: %w", instanceID, err)
	}
	if len(result) == 0 {
		return paxos.AcceptorSnapshot{}, false, nil
	}

	snapshot := paxos.AcceptorSnapshot{
		PromisedID: paxos.ProposalID{
			Number:  parseInt64(result["promised_id_number"]),
			NodeUID: result["promised_id_uid"],
		},
		PreviousID: paxos.ProposalID{
			Number:  parseInt64(result["previous_id_number"]),
			NodeUID: result["previous_id_uid"],
		},
		AcceptedID: paxos.ProposalID{
			Number:  parseInt64(result["accepted_id_number"]),
			NodeUID: result["accepted_id_uid"],
		},
	}
	if raw, ok := result["accepted_value"]; ok && raw != "" {
		v, err := jsonUnmarshalValue(raw)
		if err != nil {
			return paxos.AcceptorSnapshot{}, false, err
		}
		snapshot.AcceptedValue = v
	}
	return snapshot, true, nil
}

// Close releases the underlying Redis client connection.
func (s *Store) Close() error {
	return s.client.Close()
}
