package service

// EventPublisher is the interface for publishing change events.
// Services use this interface to emit events without depending on a concrete
// bus implementation.
type EventPublisher interface {
	Publish(kind string, payload any)
}
