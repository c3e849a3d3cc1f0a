package model

import "errors"

var (
	ErrNotTracked      = errors.New("message is not a tracked broadcast")
	ErrUnknownAudience = errors.New("unknown broadcast audience")
	ErrUnknownFlow     = errors.New("unknown registration flow")
)
