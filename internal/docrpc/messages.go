package docrpc

import "github.com/dmitrijs2005/marketsales/internal/documents"

type PingRequest struct{}

type PingResponse struct {
	Status string `cbor:"status"`
}

type PutRequest struct {
	Collection string             `cbor:"collection"`
	Document   documents.Document `cbor:"document"`
}

type PutResponse struct{}

type QueryRequest struct {
	Query documents.Query `cbor:"query"`
}

type QueryResponse struct {
	Documents []documents.Document `cbor:"documents"`
}
