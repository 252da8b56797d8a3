package sink

import "errors"

// Sentinel kinds for sink errors.
var (
	ErrEncode  = errors.New("encode event")
	ErrPublish = errors.New("publish event")
)
