package events

import "errors"

var (
	ErrConnectFailed   = errors.New("failed to connect to nats")
	ErrPublishFailed   = errors.New("failed to publish event")
	ErrEmptySubject    = errors.New("event subject is empty")
	ErrMarshalFailed   = errors.New("failed to encode event payload")
	ErrSubscribeFailed = errors.New("failed to subscribe")
)
