// Package config exposes the static variables loaded through a .yaml file
// used to wire a paxnode process.
package config

import (
	"fmt"
	"io/ioutil"
	"log"
	"time"

	"gopkg.in/yaml.v2"
)

// CONF is the Conf object which holds all the variables.
var CONF Conf

// Conf describes everything a paxnode process needs to wire a paxos.Node
// behind an HTTP transport and a persistence backend. None of this is read
// by the paxos package itself — it is consumed only by cmd/paxnode and the
// internal/transport and internal/persistence packages.
type Conf struct {
	NODE_UID string `yaml:"node_uid"` // NODE_UID is this node's identifier, used as the NodeUID half of every ProposalID it mints.
	V_DEFAULT string `yaml:"v_default"` // V_DEFAULT defaults to "paxos@<node_uid>" at load time. cmd/paxnode does not read it, so it is never proposed automatically.

	PORT int `yaml:"port"` // PORT is the TCP port the HTTP server listens on.

	NODES  []string `yaml:"nodes"`  // NODES is the list of peer base URLs participating in this instance.
	QUORUM int      `yaml:"quorum"` // QUORUM is the number of matching responses required to proceed. Computed at load time unless given explicitly.

	TIMEOUT         time.Duration `yaml:"timeout"`          // TIMEOUT bounds how long the transport waits for one peer's HTTP response.
	RETRY_INTERVAL  time.Duration `yaml:"retry_interval"`   // RETRY_INTERVAL is how often the external retransmit policy resends an unanswered Prepare or Accept!.
	MANUAL_MODE     bool          `yaml:"manual_mode"`      // MANUAL_MODE disables the periodic retry driver, requiring an operator to trigger prepare()/resend_accept() through /proposer/send_prepare and /proposer/send_accept.

	DB_TYPE string `yaml:"db_type"` // DB_TYPE selects the persistence backend: "sqlite" or "redis".
	DB_PATH string `yaml:"db_path"` // DB_PATH is the sqlite file path, used only when DB_TYPE == "sqlite".

	REDIS_ADDR string `yaml:"redis_addr"` // REDIS_ADDR is the redis server address, used only when DB_TYPE == "redis".
}

// LoadConfigFile loads the config '.yaml' file onto the callee Conf object.
func (c *Conf) LoadConfigFile(fn string) {
	yamlFile, err := ioutil.ReadFile(fn)
	if err != nil {
		log.Fatalf("yamlFile.Get err %v ", err)
	}
	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		log.Fatalf("Unmarshal: %v", err)
	}
}

// FillEmptyFields fills in those fields that were left empty in the .yaml
// file or those which need a run-time computation. If a field is not
// initialized here, it must be set explicitly in the .yaml file.
func (c *Conf) FillEmptyFields() {
	if c.NODE_UID == "" {
		log.Fatalf("config: node_uid must be set")
	}

	if c.V_DEFAULT == "" {
		c.V_DEFAULT = fmt.Sprintf("paxos@%s", c.NODE_UID)
	}

	if c.TIMEOUT == 0 {
		c.TIMEOUT = 2 * time.Second
	}

	if c.RETRY_INTERVAL == 0 {
		c.RETRY_INTERVAL = 5 * time.Second
	}

	if c.QUORUM == 0 {
		c.QUORUM = len(c.NODES)/2 + 1
	}

	if c.DB_TYPE == "" {
		c.DB_TYPE = "sqlite"
	}

	if c.DB_PATH == "" {
		c.DB_PATH = fmt.Sprintf("%s.db", c.NODE_UID)
	}

	if c.REDIS_ADDR == "" {
		c.REDIS_ADDR = "localhost:6379"
	}
}
