package model

// Notification is an outbound workflow message. Composition and delivery
// are the notifier's concern; the core only fills in the envelope.
type Notification struct {
	Subject string
	To      []string
	CC      []string
	BCC     []string
	Body    string
}
