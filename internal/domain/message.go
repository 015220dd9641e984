package domain

import "time"

// Class is the routing class of a relayed message. Payloads are never parsed
// beyond what is needed to pick one.
type Class string

const (
	ClassChat         Class = "chat"
	ClassCallOffer    Class = "call-offer"
	ClassCallAnswer   Class = "call-answer"
	ClassICECandidate Class = "ice-candidate"
	ClassCallEnd      Class = "call-end"
	ClassKeyExchange  Class = "key-exchange"
)

// RelayMessage is the envelope the relay routes on. Payload is the outbound
// event body and stays opaque to the relay.
type RelayMessage struct {
	Chat      ChatID
	Sender    UserID
	Recipient UserID // set only for direct classes
	Class     Class
	MessageID string
	Timestamp time.Time
	Payload   any
}
