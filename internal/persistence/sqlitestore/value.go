package sqlitestore

import (
	"database/sql"
	"encoding/json"

	"paxoscore/paxos"
)

func jsonMarshalValue(v paxos.Value) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func jsonUnmarshalValue(s string) (paxos.Value, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
