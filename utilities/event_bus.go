package utilities

import "sync"

// Event names published by the engine.
const (
	EventSubmissionCreated     = "submission.created"
	EventSubmissionResubmitted = "submission.resubmitted"
	EventCertificateIssued     = "certificate.issued"
)

type EventHandler func(interface{})

// EventBus decouples the submission write path from plagiarism scoring
// and certificate issuance from rendering. Handlers run asynchronously
// and must do their own error logging; a failing handler never fails
// the publisher.
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(event string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[event] = append(eb.handlers[event], handler)
}

func (eb *EventBus) Publish(event string, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if handlers, found := eb.handlers[event]; found {
		for _, handler := range handlers {
			go handler(data)
		}
	}
}
