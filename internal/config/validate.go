package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be >= 1 (got %d)", c.Database.MaxConns)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Gateway.DefaultCredits < 0 {
		return fmt.Errorf("gateway.default_credits must be >= 0 (got %d)", c.Gateway.DefaultCredits)
	}
	if c.Gateway.AuditLimit < 1 {
		return fmt.Errorf("gateway.audit_limit must be >= 1 (got %d)", c.Gateway.AuditLimit)
	}
	if c.Gateway.TxRetries < 1 {
		return fmt.Errorf("gateway.tx_retries must be >= 1 (got %d)", c.Gateway.TxRetries)
	}
	return nil
}
