package models

// Response is the uniform JSON envelope returned by all handlers
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
