package orch

import (
	"time"

	"github.com/E1Shivank/whispr/internal/app"
	"github.com/E1Shivank/whispr/internal/core"
	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator keeps the room table and the connection registry consistent.
// It is created once per process and shared by every session handler.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *core.RoomTable
	Relay    *app.Relay
	Now      func() time.Time
}

func New(policy app.Policy) *Orchestrator {
	reg := app.NewRegistry()
	rooms := core.NewRoomTable()
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Relay:    app.NewRelay(rooms, reg, policy),
		Now:      time.Now,
	}
}

// Forward stamps msg and hands it to the relay.
func (o *Orchestrator) Forward(msg domain.RelayMessage) app.PublishResult {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = o.Now()
	}
	res, err := o.Relay.Forward(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("chat", string(msg.Chat)).Msg("forward")
	}
	return res
}

type Stats struct {
	core.RoomStats
	Connections int `json:"connections"`
}

func (o *Orchestrator) Stats() Stats {
	return Stats{RoomStats: o.Rooms.Stats(), Connections: o.Registry.Count()}
}

func (o *Orchestrator) millis() int64 { return o.Now().UnixMilli() }
