package interfaces

// EventPublisher delivers committed-transaction events to downstream
// consumers. Publishing happens after commit; a failed publish never
// unwinds the transaction.
type EventPublisher interface {
	Publish(topic string, event any) error
}
