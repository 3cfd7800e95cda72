package domain

import "time"

// Dashboard report shapes. All of these are pure reads over aggregator state;
// none of them feed back into probing behavior.

type OverviewIntegration struct {
	Name             string     `json:"name"`
	DisplayName      string     `json:"display_name"`
	Category         string     `json:"category"`
	Status           string     `json:"status"`
	SuccessRate      float64    `json:"success_rate"`
	TotalChecks      int64      `json:"total_checks"`
	AverageLatencyMS float64    `json:"average_latency_ms"`
	LastCheckedAt    *time.Time `json:"last_checked_at,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
}

type OverviewReport struct {
	GeneratedAt       time.Time             `json:"generated_at"`
	TotalIntegrations int                   `json:"total_integrations"`
	Healthy           int                   `json:"healthy"`
	Unhealthy         int                   `json:"unhealthy"`
	Unknown           int                   `json:"unknown"`
	GlobalSuccessRate float64               `json:"global_success_rate"`
	Integrations      []OverviewIntegration `json:"integrations"`
}

type IntegrationDetails struct {
	Name            string           `json:"name"`
	DisplayName     string           `json:"display_name"`
	Category        string           `json:"category"`
	Endpoint        string           `json:"endpoint,omitempty"`
	AuthType        string           `json:"auth_type"`
	Enabled         bool             `json:"enabled"`
	Monitored       bool             `json:"monitored"`
	IntervalSeconds int              `json:"interval_seconds,omitempty"`
	Stats           IntegrationStats `json:"stats"`
	RecentResults   []ProbeResult    `json:"recent_results"`
}

type MonitorStatus struct {
	Integration     string    `json:"integration"`
	IntervalSeconds int       `json:"interval_seconds"`
	StartedAt       time.Time `json:"started_at"`
}

type RealTimeMetrics struct {
	GeneratedAt      time.Time       `json:"generated_at"`
	ActiveMonitors   []MonitorStatus `json:"active_monitors"`
	WindowSeconds    int             `json:"window_seconds"`
	ChecksInWindow   int             `json:"checks_in_window"`
	FailuresInWindow int             `json:"failures_in_window"`
	AverageLatencyMS float64         `json:"average_latency_ms"`
}

type PerformanceItem struct {
	Integration      string  `json:"integration"`
	Category         string  `json:"category"`
	Checks           int64   `json:"checks"`
	SuccessRate      float64 `json:"success_rate"`
	AverageLatencyMS float64 `json:"average_latency_ms"`
}

type PerformanceReport struct {
	Period      string            `json:"period"`
	GeneratedAt time.Time         `json:"generated_at"`
	Items       []PerformanceItem `json:"items"`
}

type CostItem struct {
	Integration string  `json:"integration"`
	Category    string  `json:"category"`
	Checks      int64   `json:"checks"`
	UnitCost    float64 `json:"unit_cost"`
	Estimate    float64 `json:"estimate"`
}

// CostReport is estimate-shaped: probe unit costs by category, not billing
// data. Billing integrations are out of scope for this service.
type CostReport struct {
	Period        string     `json:"period"`
	GeneratedAt   time.Time  `json:"generated_at"`
	Currency      string     `json:"currency"`
	Estimated     bool       `json:"estimated"`
	TotalEstimate float64    `json:"total_estimate"`
	Items         []CostItem `json:"items"`
}

type HealthAlert struct {
	Integration         string    `json:"integration"`
	Severity            string    `json:"severity"`
	SuccessRate         float64   `json:"success_rate"`
	ConsecutiveFailures int64     `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
	LastCheckedAt       time.Time `json:"last_checked_at"`
}

type AlertReport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Threshold   float64       `json:"threshold"`
	Alerts      []HealthAlert `json:"alerts"`
}
