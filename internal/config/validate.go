package config

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/petrosul/recon-cli/internal/match"
	"github.com/petrosul/recon-cli/internal/resilience"
)

// Validate checks that the fields a command depends on are set. Mode is the
// command name: transito, descarga, divergencia, orchestrate or runs.
func (c *Config) Validate(mode string) error {
	var problems []string

	needWorkbooks := func() {
		if len(c.Paths.TransportWorkbooks) == 0 {
			problems = append(problems, "paths.transport_workbooks is required")
		}
		if c.Paths.InvoiceReport == "" {
			problems = append(problems, "paths.invoice_report is required")
		}
	}

	switch mode {
	case "transito", "descarga":
		needWorkbooks()
	case "divergencia":
		needWorkbooks()
		if c.Paths.DivergenceReport == "" {
			problems = append(problems, "paths.divergence_report is required")
		}
		if len(c.Divergence.Products) == 0 {
			problems = append(problems, "divergence.products is required")
		}
	case "orchestrate":
		needWorkbooks()
		if len(c.Scheduler.Jobs) == 0 {
			problems = append(problems, "scheduler.jobs is required")
		}
	case "runs":
		// only needs the store
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}
	if _, err := c.CollisionPolicy(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		problems = append(problems, "retry.max_attempts must be between 1 and 10")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// CollisionPolicy maps the configured name to a matcher policy.
func (c *Config) CollisionPolicy() (match.CollisionPolicy, error) {
	switch c.Match.CollisionPolicy {
	case "", "last-wins":
		return match.LastWins, nil
	case "first-wins":
		return match.FirstWins, nil
	case "reject":
		return match.RejectOnConflict, nil
	default:
		return "", eris.Errorf("match.collision_policy must be first-wins, last-wins or reject (got %q)", c.Match.CollisionPolicy)
	}
}

// RetryPolicy converts the configured retry section into the shared policy
// object the workbook sink uses.
func (c *Config) RetryPolicy() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    c.Retry.MaxAttempts,
		InitialBackoff: c.Retry.InitialBackoff,
		MaxBackoff:     c.Retry.MaxBackoff,
		Multiplier:     c.Retry.BackoffMultiplier,
	}
}
