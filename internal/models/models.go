package models

// Response is the structured envelope for operation outcomes. Type carries
// an HTTP-like status code, Title a short category, Detail a human-readable
// message. Failures crossing the API boundary never expose internals beyond
// these three fields.
type Response struct {
	Type   int    `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Registration is the record returned when adaptor provisioning completes.
// It is constructed only after every provisioning step succeeded.
type Registration struct {
	UserID    string `json:"username"`
	APIKey    string `json:"apiKey"`
	AdaptorID string `json:"id"`
	URL       string `json:"URL"`
	Port      int    `json:"port"`
	Vhost     string `json:"vHost"`
}

// RegisterRequest identifies the publisher and the logical resource the
// adaptor will publish for.
type RegisterRequest struct {
	Provider       string `json:"provider"`
	ResourceServer string `json:"resourceServer"`
	ResourceGroup  string `json:"resourceGroup"`
	Consumer       string `json:"consumer"`
}

// ExchangeRequest is the payload for directory exchange operations.
type ExchangeRequest struct {
	ExchangeName string `json:"exchangeName"`
}

// QueueRequest is the payload for directory queue operations.
type QueueRequest struct {
	QueueName string `json:"queueName"`
}

// BindingRequest binds or unbinds a queue to an exchange for a list of
// routing keys.
type BindingRequest struct {
	ExchangeName string   `json:"exchangeName"`
	QueueName    string   `json:"queueName"`
	Entities     []string `json:"entities"`
}

// VhostRequest is the payload for directory vhost operations.
type VhostRequest struct {
	Vhost string `json:"vHost"`
}
