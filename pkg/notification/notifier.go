package notification

// Email is one outbound message
type Email struct {
	To      string
	Subject string
	Html    string
	Text    string
}

// EmailSender dispatches email. Delivery is best-effort across the service:
// callers log failures and never fail a domain operation on them.
type EmailSender interface {
	SendEmail(email Email) error
}
