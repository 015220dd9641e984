package signal

import (
	"encoding/json"

	"github.com/E1Shivank/whispr/internal/app"
)

type handler struct {
	fn        func(s *session, data json.RawMessage)
	needsRoom bool
}

// routes is built once per controller; every connection's read pump
// dispatches through the same table.
func (ctl *SignalWSController) routes() map[string]handler {
	return map[string]handler{
		EventPing:         {fn: ctl.handlePing},
		EventJoinChat:     {fn: ctl.handleJoin},
		EventLeaveChat:    {fn: ctl.handleLeave, needsRoom: true},
		EventSendMessage:  {fn: ctl.handleSendMessage, needsRoom: true},
		EventKeyExchange:  {fn: ctl.handleKeyExchange, needsRoom: true},
		EventCallOffer:    {fn: ctl.handleCallOffer, needsRoom: true},
		EventCallAnswer:   {fn: ctl.handleCallAnswer, needsRoom: true},
		EventICECandidate: {fn: ctl.handleICECandidate, needsRoom: true},
		EventCallEnd:      {fn: ctl.handleCallEnd, needsRoom: true},
	}
}

func (ctl *SignalWSController) handlePing(s *session, _ json.RawMessage) {
	ctl.sendJSON(s, app.EventPong, struct{}{})
}
