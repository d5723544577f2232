package websocket

import "errors"

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendQueueFull    = errors.New("send queue full")
	ErrInvalidPayload   = errors.New("payload cannot be marshaled")
)
