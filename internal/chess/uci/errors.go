package uci

import "errors"

var (
	ErrEngineUnavailable = errors.New("chess engine unavailable")
	ErrProtocolWrite     = errors.New("engine protocol write failed")
	ErrProtocolRead      = errors.New("engine protocol read failed")
	ErrMoveParse         = errors.New("engine move unparsable")
	ErrNoLegalResolution = errors.New("engine move has no legal resolution")
)
