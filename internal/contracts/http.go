// Package contracts holds the wire-level request shapes accepted by the HTTP
// API. Response payloads reuse the domain report types directly.
package contracts

type CheckManyRequest struct {
	Integrations []string `json:"integrations"`
}

type StartMonitorRequest struct {
	IntervalSeconds int `json:"interval_seconds"`
}
