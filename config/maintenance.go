package config

import "time"

// MaintenanceConfig controls the opportunistic maintenance pass that flushes
// dirty address books to the database.
type MaintenanceConfig struct {
	// Interval is the minimum gap between two maintenance passes.
	Interval time.Duration `env:"MAINTENANCE_INTERVAL" envDefault:"60s"`
}

// Sanitize applies guardrails to maintenance configuration values.
func (m *MaintenanceConfig) Sanitize() {
	if m.Interval <= 0 {
		m.Interval = 60 * time.Second
	}
}
