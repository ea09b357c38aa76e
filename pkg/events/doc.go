// Package events publishes domain events over NATS.
//
// Payloads are wrapped in an Envelope carrying an id, subject and timestamp,
// and sent as JSON on core NATS subjects. NoopPublisher stands in when no
// NATS URL is configured, and LoggingPublisher turns delivery failures into
// warnings so callers never fail on an event.
package events
