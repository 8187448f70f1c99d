package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

// Remote collection names.
const (
	CollectionEvents  = "events"
	CollectionTickets = "tickets"
	CollectionLines   = "lines"
)
