package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual component.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// LedgerMetrics is returned by GET /v1/metrics/ledger.
type LedgerMetrics struct {
	Operations     map[string]OperationCounts `json:"operations"`
	LoginSuccesses int64                      `json:"loginSuccesses"`
	LoginFailures  int64                      `json:"loginFailures"`
	ActiveSessions int64                      `json:"activeSessions"`
	CatalogClients int64                      `json:"catalogClients"`
}

// OperationCounts splits an operation's calls by outcome.
type OperationCounts struct {
	Succeeded  int64   `json:"succeeded"`
	Rejected   int64   `json:"rejected"`
	RejectRate float64 `json:"rejectRate"`
}
