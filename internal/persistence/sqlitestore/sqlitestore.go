// Package sqlitestore implements persistence.Store over a local SQLite
// file, following paxos/queries/queries.go's database/sql usage: a blank
// import of the sqlite3 driver, a single-open-connection pool, and an
// upsert-on-conflict write path.
package sqlitestore

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"paxoscore/paxos"
)

// Store is a persistence.Store backed by a SQLite file holding one row per
// paxos instance id.
type Store struct {
	db *sql.DB
}

// Open connects to (creating if needed) the SQLite file at path and
// ensures the snapshot table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", path, err)
	}
	// Mirrors the teacher's SQLite wiring: a single connection avoids
	// "database is locked" errors against a local file.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS acceptor_snapshot (
			instance_id TEXT PRIMARY KEY,
			promised_id_number INTEGER NOT NULL DEFAULT 0,
			promised_id_uid     TEXT NOT NULL DEFAULT '',
			previous_id_number  INTEGER NOT NULL DEFAULT 0,
			previous_id_uid     TEXT NOT NULL DEFAULT '',
			accepted_id_number  INTEGER NOT NULL DEFAULT 0,
			accepted_id_uid     TEXT NOT NULL DEFAULT '',
			accepted_value_json TEXT
		)
	`); err != nil {
		return nil, fmt.Errorf("sqlitestore: create table: %w", err)
	}

	log.Printf("[PERSISTENCE] -> sqlite store opened at %s", path)
	return &Store{db: db}, nil
}

// Save upserts the acceptor snapshot for instanceID, overwriting any prior
// row, the way paxos/queries.SetProposal's ON CONFLICT clause does.
func (s *Store) Save(instanceID string, snapshot paxos.AcceptorSnapshot) error {
	valueJSON, err := jsonMarshalValue(snapshot.AcceptedValue)
	if err != nil {
		return fmt.Errorf("sqlitestore: marshal accepted value: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO acceptor_snapshot (
			instance_id, promised_id_number, promised_id_uid,
			previous_id_number, previous_id_uid,
			accepted_id_number, accepted_id_uid, accepted_value_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(instance_id) DO UPDATE SET
			promised_id_number = excluded.promised_id_number,
			promised_id_uid = excluded.promised_id_uid,
			previous_id_number = excluded.previous_id_number,
			previous_id_uid = excluded.previous_id_uid,
			accepted_id_number = excluded.accepted_id_number,
			accepted_id_uid = excluded.accepted_id_uid,
			accepted_value_json = excluded.accepted_value_json
	`,
		instanceID,
		snapshot.PromisedID.Number, snapshot.PromisedID.NodeUID,
		snapshot.PreviousID.Number, snapshot.PreviousID.NodeUID,
		snapshot.AcceptedID.Number, snapshot.AcceptedID.NodeUID,
		valueJSON,
	)
	if err != nil {
		return fmt.Errorf("sqlitestore: save %s: %w", instanceID, err)
	}
	return nil
}

// Load fetches the acceptor snapshot for instanceID. The second return
// value is false if no row exists yet for this instance.
func (s *Store) Load(instanceID string) (paxos.AcceptorSnapshot, bool, error) {
	row := s.db.QueryRow(`
		SELECT promised_id_number, promised_id_uid,
		       previous_id_number, previous_id_uid,
		       accepted_id_number, accepted_id_uid, accepted_value_json
		FROM acceptor_snapshot WHERE instance_id = ?
	`, instanceID)

	var snapshot paxos.AcceptorSnapshot
	var valueJSON sql.NullString
	err := row.Scan(
		&snapshot.PromisedID.Number, &snapshot.PromisedID.NodeUID,
		&snapshot.PreviousID.Number, &snapshot.PreviousID.NodeUID,
		&snapshot.AcceptedID.Number, &snapshot.AcceptedID.NodeUID,
		&valueJSON,
	)
	if err == sql.ErrNoRows {
		return paxos.AcceptorSnapshot{}, false, nil
	}
	if err != nil {
		return paxos.AcceptorSnapshot{}, false, fmt.Errorf("sqlitestore: load %s: %w", instanceID, err)
	}

	if valueJSON.Valid {
		v, err := jsonUnmarshalValue(valueJSON.String)
		if err != nil {
			return paxos.AcceptorSnapshot{}, false, err
		}
		snapshot.AcceptedValue = v
	}
	return snapshot, true, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
