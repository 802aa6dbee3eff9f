package sim

import (
	"fmt"
	"math"

	"github.com/queue-sim/queue-sim/sim/distribution"
)

// StopRule selects how the cumulative probability counter is computed.
type StopRule string

const (
	// StopRuleCDF evaluates the arrival-process CDF at the arrival clock:
	// cp = 1 - exp(-λ·t). Stops once cp exceeds the threshold.
	StopRuleCDF StopRule = "cdf"
	// StopRuleUniformSum accumulates the raw arrival uniforms. The arrival
	// whose uniform would push the sum past the threshold ends the run.
	StopRuleUniformSum StopRule = "uniform-sum"
)

// Default stopping thresholds per rule.
const (
	DefaultCDFThreshold        = 0.999999
	DefaultUniformSumThreshold = 1.0
)

// validStopRules maps accepted stop rule strings.
var validStopRules = map[StopRule]bool{
	StopRuleCDF:        true,
	StopRuleUniformSum: true,
	"":                 true, // empty defaults to cdf
}

// IsValidStopRule returns true if the given string is a recognized stop rule.
func IsValidStopRule(rule string) bool {
	return validStopRules[StopRule(rule)]
}

// SimulationConfig groups the parameters of one simulation run.
// A config is immutable once passed to Engine.Configure.
type SimulationConfig struct {
	ArrivalRate         float64 // λ, mean arrivals per unit time (must be > 0)
	ServiceRate         float64 // μ, mean completions per unit time per server (must be > 0)
	Servers             int     // c, number of parallel servers (must be >= 1)
	ServiceDistribution string  // "exponential", "uniform", "normal" (or MMC/MGC/MNC)
	StopRule            StopRule
	StopThreshold       float64 // 0 selects the rule's default
}

// withDefaults returns a copy of c with zero-valued optional fields filled in.
func (c SimulationConfig) withDefaults() SimulationConfig {
	if c.StopRule == "" {
		c.StopRule = StopRuleCDF
	}
	if c.ServiceDistribution == "" {
		c.ServiceDistribution = string(distribution.KindExponential)
	}
	if c.StopThreshold == 0 {
		switch c.StopRule {
		case StopRuleUniformSum:
			c.StopThreshold = DefaultUniformSumThreshold
		default:
			c.StopThreshold = DefaultCDFThreshold
		}
	}
	return c
}

// Validate reports the first configuration problem, wrapped in ErrValidation.
func (c SimulationConfig) Validate() error {
	_, err := c.resolve()
	return err
}

// resolvedConfig is a validated config plus the distribution kind it names.
type resolvedConfig struct {
	SimulationConfig
	kind distribution.Kind
}

func (c SimulationConfig) resolve() (resolvedConfig, error) {
	c = c.withDefaults()
	if !(c.ArrivalRate > 0) || math.IsInf(c.ArrivalRate, 0) {
		return resolvedConfig{}, fmt.Errorf("%w: arrival rate must be a finite value > 0, got %v", ErrValidation, c.ArrivalRate)
	}
	if !(c.ServiceRate > 0) || math.IsInf(c.ServiceRate, 0) {
		return resolvedConfig{}, fmt.Errorf("%w: service rate must be a finite value > 0, got %v", ErrValidation, c.ServiceRate)
	}
	if c.Servers < 1 {
		return resolvedConfig{}, fmt.Errorf("%w: server count must be >= 1, got %d", ErrValidation, c.Servers)
	}
	kind, err := distribution.ParseKind(c.ServiceDistribution)
	if err != nil {
		return resolvedConfig{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !IsValidStopRule(string(c.StopRule)) {
		return resolvedConfig{}, fmt.Errorf("%w: unknown stop rule %q", ErrValidation, c.StopRule)
	}
	switch c.StopRule {
	case StopRuleCDF:
		if !(c.StopThreshold > 0 && c.StopThreshold < 1) {
			return resolvedConfig{}, fmt.Errorf("%w: cdf stop threshold must be in (0, 1), got %v", ErrValidation, c.StopThreshold)
		}
	case StopRuleUniformSum:
		if !(c.StopThreshold > 0) || math.IsInf(c.StopThreshold, 0) {
			return resolvedConfig{}, fmt.Errorf("%w: uniform-sum stop threshold must be a finite value > 0, got %v", ErrValidation, c.StopThreshold)
		}
	}
	return resolvedConfig{SimulationConfig: c, kind: kind}, nil
}
