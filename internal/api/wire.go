// Package api holds the JSON bodies exchanged between clients, the hash
// service and the counter service.
package api

// CounterResponse is the counter service body: {"data": <integer>}.
type CounterResponse struct {
	Data uint64 `json:"data" doc:"Pre-increment counter value" example:"1"`
}

// HashData pairs a counter value with its digest.
type HashData struct {
	Number uint64 `json:"number" doc:"Value fetched from the counter service" example:"7"`
	Hash   string `json:"hash" doc:"Lowercase hex SHA-256 of the decimal value" example:"7902699be42c8a8e46fbbb4501726517e86b22c56a189f7625a6da49081b2451"`
}

// HashResponse is the hash service body: {"data": {"number": <integer>, "hash": <hex>}}.
type HashResponse struct {
	Data HashData `json:"data"`
}

// ErrorResponse is the shared failure body: {"error": <string>}.
type ErrorResponse struct {
	Error string `json:"error" doc:"Human readable failure description"`
}
