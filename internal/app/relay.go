package app

import (
	"errors"
	"fmt"

	"github.com/E1Shivank/whispr/internal/core"
	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/rs/zerolog/log"
)

type route struct {
	event  string
	direct bool
}

// routes is the whole forwarding policy: outbound event name and scope per class.
var routes = map[domain.Class]route{
	domain.ClassChat:         {event: EventReceiveMessage},
	domain.ClassCallOffer:    {event: EventCallOffer},
	domain.ClassCallAnswer:   {event: EventCallAnswer},
	domain.ClassICECandidate: {event: EventICECandidate},
	domain.ClassCallEnd:      {event: EventCallEnd},
	domain.ClassKeyExchange:  {event: EventKeyExchange, direct: true},
}

var ErrUnknownClass = errors.New("unknown message class")

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []core.Member
}

// Relay fans frames out to room members. It keeps no state of its own:
// membership comes from the room table, transports from the registry.
type Relay struct {
	Rooms    *core.RoomTable
	Registry *Registry
	Policy   Policy
}

func NewRelay(rooms *core.RoomTable, reg *Registry, policy Policy) *Relay {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Relay{Rooms: rooms, Registry: reg, Policy: policy}
}

// Forward routes msg by class. Having nobody to deliver to is not an error.
func (r *Relay) Forward(msg domain.RelayMessage) (PublishResult, error) {
	rt, ok := routes[msg.Class]
	if !ok {
		return PublishResult{}, fmt.Errorf("%w: %s", ErrUnknownClass, msg.Class)
	}
	frame, err := core.EncodeEvent(rt.event, msg.Payload)
	if err != nil {
		return PublishResult{}, fmt.Errorf("encode %s: %w", rt.event, err)
	}

	var targets []core.Member
	if rt.direct {
		if m, ok := r.Rooms.Lookup(msg.Chat, msg.Recipient); ok && m.ID != msg.Sender {
			targets = []core.Member{m}
		}
	} else {
		targets = r.Rooms.Peers(msg.Chat, msg.Sender)
	}
	res := r.deliver(msg.Chat, targets, frame)
	log.Debug().Str("module", "app.relay").Str("chat", string(msg.Chat)).Str("class", string(msg.Class)).
		Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("forward result")
	return res, nil
}

// Broadcast sends an event to every member of chat except one identity.
func (r *Relay) Broadcast(chat domain.ChatID, except domain.UserID, event string, data any) PublishResult {
	frame, err := core.EncodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", event).Msg("encode broadcast")
		return PublishResult{}
	}
	return r.deliver(chat, r.Rooms.Peers(chat, except), frame)
}

// Send writes an event to a single connection.
func (r *Relay) Send(id core.ConnID, event string, data any) error {
	conn, ok := r.Registry.Connection(id)
	if !ok {
		return core.ErrConnectionClosed
	}
	frame, err := core.EncodeEvent(event, data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	return conn.TrySend(frame)
}

func (r *Relay) deliver(chat domain.ChatID, targets []core.Member, frame core.Frame) PublishResult {
	res := PublishResult{}
	for _, m := range targets {
		conn, ok := r.Registry.Connection(m.Conn)
		if !ok {
			// stale room entry, its teardown is in flight
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, m)
			r.onDropped(chat, m, conn, err)
			continue
		}
		res.SendTo++
	}
	return res
}

func (r *Relay) onDropped(chat domain.ChatID, m core.Member, conn core.SignalConnection, err error) {
	logger := log.Warn().Err(err).Str("module", "app.relay").Str("chat", string(chat)).Str("user", string(m.ID))
	if !errors.Is(err, core.ErrBackpressure) {
		logger.Msg("send to peer failed")
		return
	}
	switch r.Policy.OnBackPressure(chat, m) {
	case KickMember:
		logger.Msg("slow peer kicked")
		conn.Close()
	case DropFrame, NoAction:
		logger.Msg("frame dropped for slow peer")
	}
}
