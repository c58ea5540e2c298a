package handlers

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Bookings *BookingHandler
	Payments *PaymentHandler
	Chat     *ChatHandler
	Admin    *AdminHandler
	Events   *EventsHandler
	Health   *HealthHandler
}
