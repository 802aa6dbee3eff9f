// Package distribution samples non-negative durations for the queueing engine.
// Every sample carries the raw uniform draw it was derived from so callers
// can audit the random stream.
package distribution

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidParams is returned when a distribution is constructed with
// parameters it cannot sample from.
var ErrInvalidParams = errors.New("invalid distribution parameters")

// Source is the uniform random source consumed by samplers.
// *rand.Rand satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// Sample is a single sampled duration.
type Sample struct {
	Value   float64 // always >= 0
	Uniform float64 // first uniform draw used, in (0, 1)
}

// Sampler produces durations from a fixed distribution.
type Sampler interface {
	Sample(src Source) Sample
}

// Kind names a distribution family.
type Kind string

const (
	KindExponential Kind = "exponential"
	KindUniform     Kind = "uniform"
	KindNormal      Kind = "normal"
)

// kindAliases maps accepted spellings to a Kind. The M/x/c names are the
// model selector values of the queueing UI this simulator replaces.
var kindAliases = map[string]Kind{
	"exponential": KindExponential,
	"exp":         KindExponential,
	"mmc":         KindExponential,
	"uniform":     KindUniform,
	"mgc":         KindUniform,
	"normal":      KindNormal,
	"gaussian":    KindNormal,
	"mnc":         KindNormal,
}

// ParseKind resolves a distribution name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown distribution %q", ErrInvalidParams, name)
}

// DistSpec describes a distribution and its parameters.
//
//	exponential: rate
//	uniform:     min, max
//	normal:      mean, std_dev
type DistSpec struct {
	Type   Kind               `yaml:"type"`
	Params map[string]float64 `yaml:"params"`
}

// unitUniform draws from src until the value is strictly positive, so the
// result lies in (0, 1) and ln(u) is finite.
func unitUniform(src Source) float64 {
	u := src.Float64()
	for u == 0 {
		u = src.Float64()
	}
	return u
}

// ExponentialSampler samples Exp(rate) by inverse transform.
type ExponentialSampler struct {
	rate float64
}

func (s *ExponentialSampler) Sample(src Source) Sample {
	u := unitUniform(src)
	return Sample{Value: -(1 / s.rate) * math.Log(u), Uniform: u}
}

// UniformSampler samples U(min, max).
type UniformSampler struct {
	min, max float64
}

func (s *UniformSampler) Sample(src Source) Sample {
	u := unitUniform(src)
	return Sample{Value: s.min + u*(s.max-s.min), Uniform: u}
}

// NormalSampler samples N(mean, stdDev) with the Box-Muller transform.
// Negative results are clamped to 0. The clamp is not a proper truncation,
// so the sample mean sits slightly above mean when stdDev is large relative
// to it.
type NormalSampler struct {
	mean, stdDev float64
}

func (s *NormalSampler) Sample(src Source) Sample {
	u := unitUniform(src)
	v := unitUniform(src)
	z := math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
	return Sample{Value: math.Max(0, s.mean+z*s.stdDev), Uniform: u}
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("%w: distribution requires parameter %q", ErrInvalidParams, k)
		}
	}
	return nil
}

// NewSampler creates a Sampler from a DistSpec, validating its parameters.
func NewSampler(spec DistSpec) (Sampler, error) {
	switch spec.Type {
	case KindExponential:
		if err := requireParam(spec.Params, "rate"); err != nil {
			return nil, err
		}
		return NewExponential(spec.Params["rate"])

	case KindUniform:
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		return NewUniform(spec.Params["min"], spec.Params["max"])

	case KindNormal:
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		return NewNormal(spec.Params["mean"], spec.Params["std_dev"])

	default:
		return nil, fmt.Errorf("%w: unknown distribution type %q", ErrInvalidParams, spec.Type)
	}
}

// NewExponential returns an exponential sampler with the given rate.
func NewExponential(rate float64) (*ExponentialSampler, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w: exponential rate must be a finite value > 0, got %v", ErrInvalidParams, rate)
	}
	return &ExponentialSampler{rate: rate}, nil
}

// NewUniform returns a sampler on [min, max).
func NewUniform(min, max float64) (*UniformSampler, error) {
	if math.IsNaN(min) || math.IsNaN(max) || !(max > min) {
		return nil, fmt.Errorf("%w: uniform requires max > min, got [%v, %v]", ErrInvalidParams, min, max)
	}
	return &UniformSampler{min: min, max: max}, nil
}

// NewNormal returns a clamped normal sampler.
func NewNormal(mean, stdDev float64) (*NormalSampler, error) {
	if math.IsNaN(mean) || math.IsNaN(stdDev) || stdDev < 0 {
		return nil, fmt.Errorf("%w: normal std_dev must be >= 0, got %v", ErrInvalidParams, stdDev)
	}
	return &NormalSampler{mean: mean, stdDev: stdDev}, nil
}

// normalCV is the coefficient of variation used for normal service times.
const normalCV = 0.3

// ServiceSpec derives the service-time distribution for a server with
// completion rate mu:
//
//	exponential: rate = mu
//	uniform:     [1/mu, 2/mu]
//	normal:      mean = 1/mu, std_dev = 0.3 * mean
func ServiceSpec(kind Kind, mu float64) DistSpec {
	mean := 1 / mu
	switch kind {
	case KindUniform:
		return DistSpec{Type: kind, Params: map[string]float64{"min": mean, "max": 2 * mean}}
	case KindNormal:
		return DistSpec{Type: kind, Params: map[string]float64{"mean": mean, "std_dev": normalCV * mean}}
	default:
		return DistSpec{Type: kind, Params: map[string]float64{"rate": mu}}
	}
}
