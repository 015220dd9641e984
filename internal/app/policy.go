package app

import (
	"fmt"

	"github.com/E1Shivank/whispr/internal/core"
	"github.com/E1Shivank/whispr/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a recipient whose outbound buffer is full.
type Policy interface {
	OnBackPressure(chat domain.ChatID, member core.Member) BackpressureAction
}

// DropPolicy loses the frame for that recipient only.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.ChatID, core.Member) BackpressureAction { return DropFrame }

// KickPolicy closes the slow connection; its read loop then runs the usual teardown.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.ChatID, core.Member) BackpressureAction { return KickMember }

func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
