package signal

import (
	"encoding/json"

	"github.com/E1Shivank/whispr/internal/app"
	"github.com/E1Shivank/whispr/internal/core"
	"github.com/E1Shivank/whispr/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func (ctl *SignalWSController) handleJoin(s *session, data json.RawMessage) {
	var p joinChatPayload
	if err := ctl.decode(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.id)).Msg("bad join payload")
		ctl.sendError(s, "bad_payload")
		return
	}
	chat, err := domain.ParseChatID(p.ChatID)
	if err != nil {
		ctl.sendError(s, err.Error())
		return
	}
	participant, err := domain.NewParticipant(p.UserID, p.PublicKey)
	if err != nil {
		ctl.sendError(s, err.Error())
		return
	}

	members := ctl.Orch.Join(s.id, chat, participant)
	s.enteredRoom(chat, participant.ID)
	log.Info().Str("module", "signal").Str("conn", string(s.id)).Str("chat", string(chat)).
		Str("user", string(participant.ID)).Stringer("state", s.state).Msg("join")

	others := lo.Filter(members, func(m core.MemberDTO, _ int) bool { return m.ID != participant.ID })
	ctl.sendJSON(s, app.EventChatUsers, others)
}

// handleLeave leaves the current room; the connection itself stays open.
func (ctl *SignalWSController) handleLeave(s *session, data json.RawMessage) {
	var p leaveChatPayload
	if err := ctl.decode(data, &p); err != nil || !s.owns(p.ChatID) {
		log.Warn().Str("module", "signal").Str("conn", string(s.id)).Msg("bad leave payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(s.id)).Str("chat", string(s.chat)).Msg("leave")
	ctl.Orch.Leave(s.id)
	s.leftRoom()
	log.Debug().Str("module", "signal").Str("conn", string(s.id)).Stringer("state", s.state).Msg("left room")
}
