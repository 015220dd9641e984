package signal

import (
	"encoding/json"

	"github.com/E1Shivank/whispr/internal/app"
	"github.com/E1Shivank/whispr/internal/domain"
)

// Call negotiation payloads are forwarded as-is; offers and answers are never
// inspected. A missing callerId is filled with the sender's identity.

func (s *session) callerID(given string) string {
	if given != "" {
		return given
	}
	return string(s.user)
}

func (ctl *SignalWSController) handleCallOffer(s *session, data json.RawMessage) {
	var p callOfferPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.badPayload(s, EventCallOffer, err)
		return
	}
	ctl.forward(s, p.ChatID, domain.RelayMessage{
		Class:   domain.ClassCallOffer,
		Payload: app.CallOffer{Offer: p.Offer, CallerID: s.callerID(p.CallerID), IsVideo: p.IsVideo},
	})
}

func (ctl *SignalWSController) handleCallAnswer(s *session, data json.RawMessage) {
	var p callAnswerPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.badPayload(s, EventCallAnswer, err)
		return
	}
	ctl.forward(s, p.ChatID, domain.RelayMessage{
		Class:   domain.ClassCallAnswer,
		Payload: app.CallAnswer{Answer: p.Answer, CallerID: s.callerID(p.CallerID)},
	})
}

func (ctl *SignalWSController) handleICECandidate(s *session, data json.RawMessage) {
	var p iceCandidatePayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.badPayload(s, EventICECandidate, err)
		return
	}
	ctl.forward(s, p.ChatID, domain.RelayMessage{
		Class:   domain.ClassICECandidate,
		Payload: app.ICECandidate{Candidate: p.Candidate},
	})
}

func (ctl *SignalWSController) handleCallEnd(s *session, data json.RawMessage) {
	var p callEndPayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.badPayload(s, EventCallEnd, err)
		return
	}
	ctl.forward(s, p.ChatID, domain.RelayMessage{
		Class:   domain.ClassCallEnd,
		Payload: app.CallEnd{},
	})
}
