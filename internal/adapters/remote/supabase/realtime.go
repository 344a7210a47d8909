package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Subha2009/kamun-software/internal/ports"
	"github.com/gorilla/websocket"
)

const (
	eventJoin            = "phx_join"
	eventLeave           = "phx_leave"
	eventReply           = "phx_reply"
	eventError           = "phx_error"
	eventClose           = "phx_close"
	eventHeartbeat       = "heartbeat"
	eventPostgresChanges = "postgres_changes"
	phoenixTopic         = "phoenix"
)

type phoenixMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
	JoinRef string          `json:"join_ref,omitempty"`
}

type joinPayload struct {
	Config      joinConfig `json:"config"`
	AccessToken string     `json:"access_token,omitempty"`
}

type joinConfig struct {
	PostgresChanges []postgresChangeSpec `json:"postgres_changes"`
}

type postgresChangeSpec struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

type replyPayload struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type changePayload struct {
	Data struct {
		Type      string          `json:"type"`
		Record    json.RawMessage `json:"record"`
		OldRecord json.RawMessage `json:"old_record"`
	} `json:"data"`
}

// Subscribe joins one realtime channel for collection. The channel reconnects
// with backoff until Close; notifications never reach onChange after Close returns.
func (c *Client) Subscribe(ctx context.Context, collection ports.Collection, filter ports.Filter, onChange func(ports.Change)) (ports.Subscription, error) {
	channelCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ch := &channel{
		client:     c,
		collection: collection,
		topic:      channelTopic(collection, filter),
		filter:     channelFilter(filter),
		onChange:   onChange,
		ctx:        channelCtx,
		cancel:     cancel,
	}

	conn, err := ch.connect(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	ch.wg.Add(1)
	go ch.loop(conn)
	return ch, nil
}

type channel struct {
	client     *Client
	collection ports.Collection
	topic      string
	filter     string
	onChange   func(ports.Change)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	refs   atomic.Int64

	connMu  sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	cbMu   sync.Mutex
	closed bool
}

func (ch *channel) Close() error {
	ch.cbMu.Lock()
	ch.closed = true
	ch.cbMu.Unlock()

	ch.connMu.Lock()
	conn := ch.conn
	ch.connMu.Unlock()
	if conn != nil {
		_ = ch.send(conn, phoenixMessage{Topic: ch.topic, Event: eventLeave, Payload: json.RawMessage(`{}`)})
	}

	ch.cancel()
	if conn != nil {
		_ = conn.Close()
	}
	ch.wg.Wait()
	return nil
}

func (ch *channel) connect(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := ch.client.dialer.DialContext(ctx, ch.client.realtimeURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial realtime for %s: %w", ch.collection, err)
	}

	payload, err := json.Marshal(joinPayload{
		Config: joinConfig{PostgresChanges: []postgresChangeSpec{{
			Event:  "*",
			Schema: ch.client.schema,
			Table:  string(ch.collection),
			Filter: ch.filter,
		}}},
		AccessToken: ch.client.key,
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("encode join payload: %w", err)
	}

	ref := ch.nextRef()
	if err := ch.send(conn, phoenixMessage{Topic: ch.topic, Event: eventJoin, Payload: payload, Ref: ref, JoinRef: ref}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("join realtime channel %s: %w", ch.topic, err)
	}

	ch.connMu.Lock()
	ch.conn = conn
	ch.connMu.Unlock()

	if ch.ctx.Err() != nil {
		_ = conn.Close()
		return nil, ch.ctx.Err()
	}

	return conn, nil
}

func (ch *channel) loop(conn *websocket.Conn) {
	defer ch.wg.Done()

	delay := minReconnectDelay
	for {
		if conn != nil {
			err := ch.serve(conn)
			_ = conn.Close()
			if ch.ctx.Err() != nil {
				return
			}
			ch.client.logger.Warn("realtime channel dropped", "topic", ch.topic, "error", err)
		}

		select {
		case <-ch.ctx.Done():
			return
		case <-time.After(delay):
		}

		next, err := ch.connect(ch.ctx)
		if err != nil {
			if ch.ctx.Err() != nil {
				return
			}
			ch.client.logger.Warn("realtime reconnect failed", "topic", ch.topic, "error", err)
			conn = nil
			delay = min(delay*2, maxReconnectDelay)
			continue
		}

		conn = next
		delay = minReconnectDelay
	}
}

func (ch *channel) serve(conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go ch.heartbeat(conn, done)

	for {
		var msg phoenixMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		switch msg.Event {
		case eventPostgresChanges:
			ch.handleChange(msg.Payload)
		case eventReply:
			var reply replyPayload
			if err := json.Unmarshal(msg.Payload, &reply); err == nil && reply.Status != "ok" {
				ch.client.logger.Warn("realtime reply not ok", "topic", msg.Topic, "status", reply.Status, "response", string(reply.Response))
			}
		case eventError, eventClose:
			if msg.Topic == ch.topic {
				return fmt.Errorf("channel %s received %s", ch.topic, msg.Event)
			}
		}
	}
}

func (ch *channel) heartbeat(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(ch.client.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ch.ctx.Done():
			_ = conn.Close()
			return
		case <-ticker.C:
			msg := phoenixMessage{Topic: phoenixTopic, Event: eventHeartbeat, Payload: json.RawMessage(`{}`), Ref: ch.nextRef()}
			if err := ch.send(conn, msg); err != nil {
				return
			}
		}
	}
}

func (ch *channel) handleChange(raw json.RawMessage) {
	var payload changePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		ch.client.logger.Warn("decode realtime change", "topic", ch.topic, "error", err)
		return
	}

	change := ports.Change{Collection: ch.collection}
	switch strings.ToUpper(payload.Data.Type) {
	case "INSERT":
		change.Kind = ports.ChangeInsert
		change.Record = payload.Data.Record
	case "UPDATE":
		change.Kind = ports.ChangeUpdate
		change.Record = payload.Data.Record
	case "DELETE":
		change.Kind = ports.ChangeDelete
		change.Record = payload.Data.OldRecord
	default:
		return
	}

	ch.cbMu.Lock()
	defer ch.cbMu.Unlock()
	if ch.closed {
		return
	}
	ch.onChange(change)
}

func (ch *channel) send(conn *websocket.Conn, msg phoenixMessage) error {
	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

func (ch *channel) nextRef() string {
	return strconv.FormatInt(ch.refs.Add(1), 10)
}

// channelTopic mirrors the "<table>_<session>" naming used by the web client.
func channelTopic(collection ports.Collection, filter ports.Filter) string {
	name := string(collection)
	if sessionID := ports.FormatValue(filter["session_id"]); sessionID != "" {
		name += "_" + sessionID
	}
	return "realtime:" + name
}

// channelFilter renders one equality filter; realtime accepts a single
// condition, so session_id wins when present.
func channelFilter(filter ports.Filter) string {
	if value, ok := filter["session_id"]; ok {
		return "session_id=eq." + ports.FormatValue(value)
	}

	fields := make([]string, 0, len(filter))
	for field := range filter {
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return ""
	}
	sort.Strings(fields)
	return fields[0] + "=eq." + ports.FormatValue(filter[fields[0]])
}
