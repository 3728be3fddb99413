package handlers

// HandlerBundle groups all endpoint handlers.
type HandlerBundle struct {
	Auth           *AuthHandler
	Users          *UserHandler
	Bookings       *BookingHandler
	Payments       *PaymentHandler
	Certifications *CertificationHandler
	Disputes       *DisputeHandler
	Reviews        *ReviewHandler
	Chat           *ChatHandler
	Admin          *AdminHandler
}
