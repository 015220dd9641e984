package signal

import (
	"encoding/json"

	"github.com/E1Shivank/whispr/internal/app"
	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/rs/zerolog/log"
)

// forward routes msg through the session's own room. Naming another room is
// dropped so nothing leaks across rooms.
func (ctl *SignalWSController) forward(s *session, chatID string, msg domain.RelayMessage) {
	if !s.owns(chatID) {
		log.Warn().Str("module", "signal").Str("conn", string(s.id)).Str("chat", chatID).
			Str("class", string(msg.Class)).Msg("chat id does not match session room")
		return
	}
	msg.Chat, msg.Sender = s.chat, s.user
	ctl.Orch.Forward(msg)
}

func (ctl *SignalWSController) badPayload(s *session, event string, err error) {
	log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.id)).Str("type", event).Msg("bad payload")
	ctl.sendError(s, "bad_payload")
}

func (ctl *SignalWSController) handleSendMessage(s *session, data json.RawMessage) {
	var p sendMessagePayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.badPayload(s, EventSendMessage, err)
		return
	}
	now := ctl.Orch.Now()
	ctl.forward(s, p.ChatID, domain.RelayMessage{
		Class:     domain.ClassChat,
		MessageID: p.MessageID,
		Timestamp: now,
		Payload: app.ReceiveMessage{
			MessageID:        p.MessageID,
			EncryptedContent: p.EncryptedContent,
			Timestamp:        now.UnixMilli(),
			SenderID:         s.user,
		},
	})
}

// handleKeyExchange hands a key bundle to one named member of the room.
func (ctl *SignalWSController) handleKeyExchange(s *session, data json.RawMessage) {
	var p keyExchangePayload
	if err := ctl.decode(data, &p); err != nil {
		ctl.badPayload(s, EventKeyExchange, err)
		return
	}
	ctl.forward(s, p.ChatID, domain.RelayMessage{
		Class:     domain.ClassKeyExchange,
		Recipient: domain.UserID(p.RecipientID),
		Payload:   app.KeyExchange{SenderID: s.user, KeyBundle: p.KeyBundle},
	})
}
