package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Scenario is a YAML file that presets flag values for run and replicate.
// Pointer fields distinguish "absent" from an explicit zero.
type Scenario struct {
	ArrivalRate   *float64 `yaml:"arrival_rate"`
	ServiceRate   *float64 `yaml:"service_rate"`
	Servers       *int     `yaml:"servers"`
	Model         *string  `yaml:"model"`
	StopRule      *string  `yaml:"stop_rule"`
	StopThreshold *float64 `yaml:"stop_threshold"`
	Seed          *int64   `yaml:"seed"`
	MaxCustomers  *int     `yaml:"max_customers"`
	Replications  *int     `yaml:"replications"`
	Parallelism   *int     `yaml:"parallelism"`
}

// LoadScenario parses a scenario file. Unknown keys are rejected so that
// typos surface as errors instead of silently falling back to defaults.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return &sc, nil
}

// applyScenario copies scenario values into fs for every flag the user did
// not set explicitly. Flags missing from fs (e.g. replications on run) are skipped.
func applyScenario(fs *pflag.FlagSet, sc *Scenario) {
	set := func(name, value string) {
		f := fs.Lookup(name)
		if f == nil || f.Changed {
			return
		}
		if err := f.Value.Set(value); err != nil {
			logrus.Warnf("scenario value %q for --%s ignored: %v", value, name, err)
			return
		}
		logrus.Debugf("--%s=%s (from scenario)", name, value)
	}
	float := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	if sc.ArrivalRate != nil {
		set("lambda", float(*sc.ArrivalRate))
	}
	if sc.ServiceRate != nil {
		set("mu", float(*sc.ServiceRate))
	}
	if sc.Servers != nil {
		set("servers", strconv.Itoa(*sc.Servers))
	}
	if sc.Model != nil {
		set("model", *sc.Model)
	}
	if sc.StopRule != nil {
		set("stop-rule", *sc.StopRule)
	}
	if sc.StopThreshold != nil {
		set("threshold", float(*sc.StopThreshold))
	}
	if sc.Seed != nil {
		set("seed", strconv.FormatInt(*sc.Seed, 10))
	}
	if sc.MaxCustomers != nil {
		set("max-customers", strconv.Itoa(*sc.MaxCustomers))
	}
	if sc.Replications != nil {
		set("replications", strconv.Itoa(*sc.Replications))
	}
	if sc.Parallelism != nil {
		set("parallelism", strconv.Itoa(*sc.Parallelism))
	}
}
