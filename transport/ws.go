package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/teranos/waitline/errors"
	"github.com/teranos/waitline/logger"
	"github.com/teranos/waitline/wire"
)

// wsSendRateLimit caps how many frames WSTransport will push to a single
// peer connection per second. Tick-driven broadcast traffic (QPID
// updates, count fan-out) can otherwise burst well past what a
// websocket write deadline tolerates during a membership storm.
const wsSendRateLimit rate.Limit = 200

// wsSendBurst is the token bucket depth backing wsSendRateLimit, sized
// to absorb one full broadcastLatestValues sweep across a modest
// cluster without throttling ordinary operation.
const wsSendBurst = 50

// WSTransport is a Transport over persistent websocket connections to
// every peer, dialing out to peers with a higher node id (by convention,
// to avoid both sides racing to connect) and accepting inbound
// connections from the rest.
type WSTransport struct {
	node wire.NodeID

	mu      sync.Mutex
	conns   map[wire.NodeID]Conn
	limiter map[wire.NodeID]*rate.Limiter

	incoming chan addressedMessage

	upgrader websocket.Upgrader
}

type addressedMessage struct {
	from wire.NodeID
	msg  wire.Message
}

// wireFrame is the JSON frame exchanged over a connection: the sender's
// node id alongside the message, so the receiver's accept loop (which
// doesn't otherwise know who dialed in) can attribute it correctly.
type wireFrame struct {
	From wire.NodeID  `json:"from"`
	Msg  wire.Message `json:"msg"`
}

// NewWSTransport returns a transport for nodeID with no connections yet;
// callers wire up peers with Dial and Accept.
func NewWSTransport(nodeID wire.NodeID) *WSTransport {
	return &WSTransport{
		node:     nodeID,
		conns:    make(map[wire.NodeID]Conn),
		limiter:  make(map[wire.NodeID]*rate.Limiter),
		incoming: make(chan addressedMessage, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Dial connects out to a peer at addr, identifying it as peerID.
func (t *WSTransport) Dial(peerID wire.NodeID, addr string) error {
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/node", nil)
	if err != nil {
		return errors.Wrapf(err, "dialing peer %d at %s", peerID, addr)
	}
	t.addConn(peerID, conn)
	return nil
}

// Accept upgrades an inbound HTTP request to a websocket connection and
// starts reading frames from it. The peer's node id is learned from the
// first frame it sends, since an accepting node doesn't know who is
// dialing in until they announce themselves.
func (t *WSTransport) Accept(w http.ResponseWriter, r *http.Request) error {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return errors.Wrap(err, "upgrading websocket connection")
	}

	var first wireFrame
	if err := conn.ReadJSON(&first); err != nil {
		conn.Close()
		return errors.Wrap(err, "reading peer announcement")
	}
	t.addConn(first.From, conn)
	t.incoming <- addressedMessage{from: first.From, msg: first.Msg}
	return nil
}

func (t *WSTransport) addConn(peerID wire.NodeID, conn Conn) {
	t.mu.Lock()
	t.conns[peerID] = conn
	if _, ok := t.limiter[peerID]; !ok {
		t.limiter[peerID] = rate.NewLimiter(wsSendRateLimit, wsSendBurst)
	}
	t.mu.Unlock()
	go t.readLoop(peerID, conn)
}

func (t *WSTransport) readLoop(peerID wire.NodeID, conn Conn) {
	for {
		var frame wireFrame
		if err := conn.ReadJSON(&frame); err != nil {
			logger.Debugw("peer connection closed", "peer", peerID, "error", err)
			t.mu.Lock()
			delete(t.conns, peerID)
			t.mu.Unlock()
			return
		}
		t.incoming <- addressedMessage{from: peerID, msg: frame.Msg}
	}
}

// Send writes msg to the connection for to, if one is established. A peer
// being sent frames faster than wsSendRateLimit allows has its excess
// frames dropped rather than queued, and the transport never resends
// them. An occupancy count that loses a frame is abandoned by the count
// timeout and started afresh; a dropped QPID update is not resent.
func (t *WSTransport) Send(to wire.NodeID, msg wire.Message) error {
	t.mu.Lock()
	conn, ok := t.conns[to]
	limiter := t.limiter[to]
	t.mu.Unlock()
	if !ok {
		return errors.Newf("no connection to node %d", to)
	}
	if limiter != nil && !limiter.Allow() {
		logger.Debugw("dropping outbound frame, peer rate limit exceeded", "to", to, "kind", msg.Kind)
		return nil
	}
	if err := conn.WriteJSON(wireFrame{From: t.node, Msg: msg}); err != nil {
		return errors.Wrapf(err, "sending to node %d", to)
	}
	return nil
}

// Poll returns the next message received from any peer, if any is
// queued, without blocking.
func (t *WSTransport) Poll() (wire.NodeID, wire.Message, bool) {
	select {
	case m := <-t.incoming:
		return m.from, m.msg, true
	default:
		return 0, wire.Message{}, false
	}
}

// Close tears down every open peer connection.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var firstErr error
	for _, c := range t.conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	t.conns = make(map[wire.NodeID]Conn)
	t.limiter = make(map[wire.NodeID]*rate.Limiter)
	return firstErr
}
