// Package payment wraps the hosted checkout collaborator. The rest of
// the service only sees a request identifier going out and a paid/not
// paid signal coming back.
package payment

// CheckoutRequest carries what the hosted checkout needs to collect a
// payment for one analysis request.
type CheckoutRequest struct {
	RequestID     string
	CustomerEmail string
}

// CheckoutSession is the created hosted checkout session.
type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a parsed payment webhook notification.
type Event struct {
	// Completed is true for a successful payment capture.
	Completed bool
	// RequestID is the analysis request UUID the payment belongs to.
	RequestID string
}

// Provider is a hosted checkout integration.
type Provider interface {
	CreateCheckout(req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
