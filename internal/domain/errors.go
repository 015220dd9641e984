package domain

import "errors"

var (
	ErrChatIDEmpty       = errors.New("chat id empty")
	ErrChatIDTooLong     = errors.New("chat id too long")
	ErrUserIDEmpty       = errors.New("user id empty")
	ErrUserIDTooLong     = errors.New("user id too long")
	ErrPublicKeyTooLarge = errors.New("public key too large")
)
