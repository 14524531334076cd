// Command paxnode wires a single paxos.Node behind an HTTP transport and a
// persistence backend, exercising the transport-free core end to end the
// way the teacher's main.go exercises its own algorithm.
package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"paxoscore/paxos"
	"paxoscore/paxos/config"
	"paxoscore/internal/persistence"
	"paxoscore/internal/persistence/redisstore"
	"paxoscore/internal/persistence/sqlitestore"
	"paxoscore/internal/transport/httpmessenger"
	"paxoscore/internal/transport/wire"
)

var (
	node      *paxos.Node
	messenger *httpmessenger.Messenger
	store     persistence.Store
)

func enableCors(w *http.ResponseWriter) {
	(*w).Header().Set("Access-Control-Allow-Origin", "*")
}

func addContentTypeJSON(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}

func toJSON(i interface{}) string {
	res, _ := json.MarshalIndent(i, "", "\t")
	return string(res)
}

func persistAcceptorState() {
	if store == nil {
		return
	}
	if err := store.Save(config.CONF.NODE_UID, node.Acceptor.Snapshot()); err != nil {
		log.Printf("[PERSISTENCE] -> failed to persist acceptor state: %v", err)
	}
}

/*
# ========================================================= #
#                     ACCEPTOR HANDLERS                     #
# ========================================================= #
*/

// receivePrepareHandler handles POST requests on /acceptor/receive_prepare.
func receivePrepareHandler(w http.ResponseWriter, r *http.Request) {
	b, err := ioutil.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var msg wire.PrepareMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	node.RecvPrepare(msg.FromUID.FromUID, msg.ProposalID.ToCore())
	persistAcceptorState()

	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprint(w, `{ "message": "ok" }`)
}

// receiveAcceptHandler handles POST requests on /acceptor/receive_accept.
func receiveAcceptHandler(w http.ResponseWriter, r *http.Request) {
	b, err := ioutil.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var msg wire.AcceptMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	node.RecvAcceptRequest(msg.FromUID.FromUID, msg.ProposalID.ToCore(), msg.Value)
	persistAcceptorState()

	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprint(w, `{ "message": "ok" }`)
}

/*
# ========================================================= #
#                     PROPOSER HANDLERS                     #
# ========================================================= #
*/

// sendPrepareHandler handles GET requests on /proposer/send_prepare,
// starting a new round of leadership acquisition.
func sendPrepareHandler(w http.ResponseWriter, _ *http.Request) {
	node.Prepare(true)

	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprint(w, `{ "message": "prepared" }`)
}

// sendAcceptHandler handles GET requests on /proposer/send_accept, setting
// this node's proposed value if none is set yet and resending Accept! if
// this node is leading.
func sendAcceptHandler(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	v := r.Form.Get("v")
	node.SetProposal(v)
	node.ResendAccept()

	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprint(w, `{ "message": "accept sent" }`)
}

// receivePromiseHandler handles POST requests on /proposer/receive_promise.
func receivePromiseHandler(w http.ResponseWriter, r *http.Request) {
	b, err := ioutil.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var msg wire.PromiseMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	node.RecvPromise(msg.FromUID.FromUID, msg.ProposalID.ToCore(), msg.PreviousID.ToCore(), msg.AcceptedValue)

	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprint(w, `{ "message": "ok" }`)
}

// receivePrepareNackHandler handles POST requests on /proposer/receive_prepare_nack.
func receivePrepareNackHandler(w http.ResponseWriter, r *http.Request) {
	b, err := ioutil.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var msg wire.PrepareNackMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	node.RecvPrepareNack(msg.FromUID.FromUID, msg.ProposalID.ToCore(), msg.PromisedID.ToCore())

	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprint(w, `{ "message": "ok" }`)
}

// receiveAcceptNackHandler handles POST requests on /proposer/receive_accept_nack.
func receiveAcceptNackHandler(w http.ResponseWriter, r *http.Request) {
	b, err := ioutil.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var msg wire.AcceptNackMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	node.RecvAcceptNack(msg.FromUID.FromUID, msg.ProposalID.ToCore(), msg.PromisedID.ToCore())

	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprint(w, `{ "message": "ok" }`)
}

/*
# ========================================================= #
#                     LEARNER HANDLERS                      #
# ========================================================= #
*/

// receiveAcceptedHandler handles POST requests on /learner/receive_accepted.
func receiveAcceptedHandler(w http.ResponseWriter, r *http.Request) {
	b, err := ioutil.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	var msg wire.AcceptedMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	node.RecvAccepted(msg.FromUID.FromUID, msg.ProposalID.ToCore(), msg.AcceptedValue)

	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprint(w, `{ "message": "ok" }`)
}

/*
# ========================================================= #
#                       OTHER HANDLERS                      #
# ========================================================= #
*/

// getResolutionHandler handles GET requests on /node/get_resolution.
func getResolutionHandler(w http.ResponseWriter, _ *http.Request) {
	enableCors(&w)
	addContentTypeJSON(&w)

	id, value, ok := node.Resolution()
	if !ok {
		_, _ = fmt.Fprint(w, `{ "resolved": false }`)
		return
	}
	_, _ = fmt.Fprint(w, toJSON(struct {
		Resolved   bool        `json:"resolved"`
		ProposalID interface{} `json:"proposal_id"`
		Value      interface{} `json:"value"`
	}{true, wire.FromCore(id), value}))
}

// welcomeHandler answers the root route "/" and any other unrecognized one.
func welcomeHandler(w http.ResponseWriter, _ *http.Request) {
	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprint(w, `{ "message": "single-decree paxos node" }`)
}

// infoHandler answers GET /info with this node's identity and mode.
func infoHandler(w http.ResponseWriter, _ *http.Request) {
	mode := "automatic"
	if config.CONF.MANUAL_MODE {
		mode = "manual"
	}

	enableCors(&w)
	addContentTypeJSON(&w)
	_, _ = fmt.Fprintf(w, `{ "node_uid": "%s@%s", "mode": "%s" }`, config.CONF.NODE_UID, "golang", mode)
}

// retryForever drives the external liveness policy the core explicitly
// delegates to: periodically retransmit a Prepare if leadership has not
// yet been acquired, or resend the current Accept! if it has. Adapted from
// the teacher's seek4ever loop, trimmed down from multi-decree
// dangling-proposal scanning to the single instance this process owns.
func retryForever() {
	for {
		time.Sleep(config.CONF.RETRY_INTERVAL)
		if node.Resolved() {
			continue
		}
		if node.Leader() {
			log.Print("[RETRY] -> resending accept")
			node.ResendAccept()
		} else {
			log.Print("[RETRY] -> re-preparing")
			node.Prepare(false)
		}
	}
}

func init() {
	rand.Seed(time.Now().UTC().UnixNano())
	configPath := "./config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	config.CONF.LoadConfigFile(configPath)
	config.CONF.FillEmptyFields()

	var err error
	switch config.CONF.DB_TYPE {
	case "redis":
		store, err = redisstore.Open(config.CONF.REDIS_ADDR)
	default:
		store, err = sqlitestore.Open(config.CONF.DB_PATH)
	}
	if err != nil {
		log.Fatalf("[MAIN] -> failed to open persistence store: %v", err)
	}

	messenger = httpmessenger.New(config.CONF.NODE_UID, config.CONF.NODES, config.CONF.TIMEOUT)
	node = paxos.NewNode(messenger, config.CONF.NODE_UID, config.CONF.QUORUM)

	if snapshot, ok, err := store.Load(config.CONF.NODE_UID); err != nil {
		log.Fatalf("[MAIN] -> failed to load persisted state: %v", err)
	} else if ok {
		log.Printf("[MAIN] -> restoring persisted acceptor state for %s", config.CONF.NODE_UID)
		node.Acceptor.Restore(snapshot)
	}
}

func main() {
	http.HandleFunc("/", welcomeHandler)
	http.HandleFunc("/info", infoHandler)
	http.HandleFunc("/node/get_resolution", getResolutionHandler)

	http.HandleFunc("/proposer/send_prepare", sendPrepareHandler)
	http.HandleFunc("/proposer/send_accept", sendAcceptHandler)
	http.HandleFunc("/proposer/receive_promise", receivePromiseHandler)
	http.HandleFunc("/proposer/receive_prepare_nack", receivePrepareNackHandler)
	http.HandleFunc("/proposer/receive_accept_nack", receiveAcceptNackHandler)

	http.HandleFunc("/acceptor/receive_prepare", receivePrepareHandler)
	http.HandleFunc("/acceptor/receive_accept", receiveAcceptHandler)

	http.HandleFunc("/learner/receive_accepted", receiveAcceptedHandler)

	if !config.CONF.MANUAL_MODE {
		log.Printf("[MAIN] -> automatic mode, retry interval %s", config.CONF.RETRY_INTERVAL)
		go retryForever()
	}

	log.Printf("[MAIN] -> serving paxos node %s on port %d", config.CONF.NODE_UID, config.CONF.PORT)
	log.Fatal(http.ListenAndServe(":"+strconv.Itoa(config.CONF.PORT), nil))
}
