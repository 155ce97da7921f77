// Package busmem is an in-memory bus.Client built around a topic trie
// that holds both live subscribers and retained messages, with "+"/"#"
// wildcard matching, flat slash-delimited string topics and []byte
// payloads. It stands in as a bus.Client for tests and the host
// simulation harness, including the retained-message and LWT semantics
// a real broker provides.
package busmem

import (
	"strings"
	"sync"

	"medbox-fw/bus"
)

const (
	singleWildcard = "+"
	multiWildcard  = "#"
)

type retainedMsg struct {
	payload []byte
}

type node struct {
	children map[string]*node
	subs     map[int]bus.Handler // subscriptionID -> handler
	retained *retainedMsg
}

func ensureChild(n *node, tok string) *node {
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	if n.children[tok] == nil {
		n.children[tok] = &node{}
	}
	return n.children[tok]
}

func splitTopic(topic string) []string {
	return strings.Split(strings.Trim(topic, "/"), "/")
}

// Client is an in-memory bus.Client. The zero value is not usable; use New.
type Client struct {
	mu   sync.Mutex
	root *node
	subID int

	connected bool
	opts      bus.ConnectOptions

	// Test/sim knobs.
	failConnect bool
	failPublish bool
}

// New returns a disconnected in-memory client.
func New() *Client {
	return &Client{root: &node{}}
}

// SetConnectFailure makes the next Connect call(s) fail, to exercise
// PresenceManager's reconnect-on-failure path deterministically.
func (c *Client) SetConnectFailure(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failConnect = fail
}

// SetPublishFailure makes every Publish call fail (simulating a full
// outbound buffer or a dropped link) without tearing down Connected(), to
// exercise DispenseMachine's REPORTING retry loop.
func (c *Client) SetPublishFailure(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failPublish = fail
}

// Drop simulates an unexpected disconnect: publishes the LWT (retained)
// and marks the client disconnected, without the caller asking for it.
func (c *Client) Drop() {
	c.mu.Lock()
	opts := c.opts
	wasConnected := c.connected
	c.mu.Unlock()
	if wasConnected && opts.WillTopic != "" {
		c.Publish(opts.WillTopic, opts.WillQoS, opts.WillRetained, opts.WillPayload)
	}
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *Client) Connect(opts bus.ConnectOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failConnect {
		return errConnectFailed{}
	}
	c.opts = opts
	c.connected = true
	return nil
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func (c *Client) Subscribe(topic string, _ byte, handler bus.Handler) error {
	toks := splitTopic(topic)
	c.mu.Lock()
	n := c.root
	for _, t := range toks {
		n = ensureChild(n, t)
	}
	// Subscribing again to the same topic replaces the previous handler.
	n.subs = make(map[int]bus.Handler, 1)
	c.subID++
	n.subs[c.subID] = handler

	var retained []deliverable
	c.collectRetainedLocked(c.root, toks, 0, &retained)
	c.mu.Unlock()

	for _, d := range retained {
		handler(d.topic, d.payload)
	}
	return nil
}

func (c *Client) Publish(topic string, _ byte, retained bool, payload []byte) bool {
	toks := splitTopic(topic)
	c.mu.Lock()
	if c.failPublish || !c.connected {
		c.mu.Unlock()
		return false
	}
	var targets []bus.Handler
	c.collectSubscribersLocked(c.root, toks, 0, &targets)

	if retained {
		n := c.root
		for _, t := range toks {
			n = ensureChild(n, t)
		}
		if len(payload) == 0 {
			n.retained = nil
		} else {
			cp := append([]byte(nil), payload...)
			n.retained = &retainedMsg{payload: cp}
		}
	}
	c.mu.Unlock()

	for _, h := range targets {
		h(topic, payload)
	}
	return true
}

type deliverable struct {
	topic   string
	payload []byte
}

func (c *Client) collectSubscribersLocked(n *node, toks []string, depth int, out *[]bus.Handler) {
	if n == nil {
		return
	}
	if depth == len(toks) {
		for _, h := range n.subs {
			*out = append(*out, h)
		}
		if n.children != nil {
			if mw := n.children[multiWildcard]; mw != nil {
				for _, h := range mw.subs {
					*out = append(*out, h)
				}
			}
		}
		return
	}
	tok := toks[depth]
	if n.children != nil {
		if child := n.children[tok]; child != nil {
			c.collectSubscribersLocked(child, toks, depth+1, out)
		}
		if sw := n.children[singleWildcard]; sw != nil {
			c.collectSubscribersLocked(sw, toks, depth+1, out)
		}
		if mw := n.children[multiWildcard]; mw != nil {
			for _, h := range mw.subs {
				*out = append(*out, h)
			}
		}
	}
}

func (c *Client) collectRetainedLocked(n *node, pattern []string, depth int, out *[]deliverable) {
	if n == nil {
		return
	}
	if depth == len(pattern) {
		if n.retained != nil {
			*out = append(*out, deliverable{topic: strings.Join(pattern, "/"), payload: n.retained.payload})
		}
		return
	}
	ptok := pattern[depth]
	switch ptok {
	case multiWildcard:
		c.collectAllRetainedLocked(n, pattern[:depth], out)
	case singleWildcard:
		for tok, child := range n.children {
			c.collectRetainedLocked(child, replaceAt(pattern, depth, tok), depth+1, out)
		}
	default:
		if child := n.children[ptok]; child != nil {
			c.collectRetainedLocked(child, pattern, depth+1, out)
		}
	}
}

func (c *Client) collectAllRetainedLocked(n *node, prefix []string, out *[]deliverable) {
	if n == nil {
		return
	}
	if n.retained != nil {
		*out = append(*out, deliverable{topic: strings.Join(prefix, "/"), payload: n.retained.payload})
	}
	for tok, child := range n.children {
		c.collectAllRetainedLocked(child, append(append([]string(nil), prefix...), tok), out)
	}
}

func replaceAt(s []string, i int, v string) []string {
	out := append([]string(nil), s...)
	out[i] = v
	return out
}

type errConnectFailed struct{}

func (errConnectFailed) Error() string { return "busmem: connect failed (simulated)" }
