package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrProtocol        = errors.New("protocol error")

	// ErrTopicTooLong is returned when an encoded request would not fit the
	// 16 bit length field.
	ErrTopicTooLong = fmt.Errorf("%w: topic too long", ErrInvalidArgument)
)
