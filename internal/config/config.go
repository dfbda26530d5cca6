// Package config parses the dependency configuration file: one entry per
// backend service with its endpoint, call deadline, retry policy, and
// circuit breaker tuning.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const SpecSchemaV1 = "authengine.dependencies.v1"

// Dependency names. These key the breaker registry, the diagnostic
// handler, and the audit payloads, so they must stay stable.
const (
	DepCard    = "card"
	DepFraud   = "fraud"
	DepMember  = "member"
	DepAccount = "account"
	DepBasket  = "basket"
	DepLedger  = "ledger"
)

var requiredDependencies = []string{DepCard, DepFraud, DepMember, DepAccount, DepBasket, DepLedger}

type Spec struct {
	Schema       string                `json:"schema" yaml:"schema"`
	PoolSize     int                   `json:"pool_size,omitempty" yaml:"pool_size,omitempty"`
	Dependencies map[string]Dependency `json:"dependencies" yaml:"dependencies"`
}

type Dependency struct {
	BaseURL  string   `json:"base_url" yaml:"base_url"`
	Deadline Duration `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Retry    Retry    `json:"retry,omitempty" yaml:"retry,omitempty"`
	Breaker  Breaker  `json:"breaker,omitempty" yaml:"breaker,omitempty"`
}

type Retry struct {
	MaxAttempts int      `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	Wait        Duration `json:"wait,omitempty" yaml:"wait,omitempty"`
}

type Breaker struct {
	Window               int      `json:"window,omitempty" yaml:"window,omitempty"`
	FailureRateThreshold float64  `json:"failure_rate_threshold,omitempty" yaml:"failure_rate_threshold,omitempty"`
	OpenWait             Duration `json:"open_wait,omitempty" yaml:"open_wait,omitempty"`
}

// Duration is a time.Duration that unmarshals from a YAML string such as
// "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func ParseSpec(input []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(input, &spec); err != nil {
		return Spec{}, fmt.Errorf("decode spec: %w", err)
	}
	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

func Load(path string) (Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("read dependency config: %w", err)
	}
	return ParseSpec(raw)
}

func (s *Spec) applyDefaults() {
	if s.PoolSize == 0 {
		s.PoolSize = 16
	}
	for name, dep := range s.Dependencies {
		if dep.Deadline == 0 {
			dep.Deadline = Duration(500 * time.Millisecond)
		}
		if dep.Retry.MaxAttempts == 0 {
			dep.Retry.MaxAttempts = 3
		}
		if dep.Retry.Wait == 0 {
			dep.Retry.Wait = Duration(100 * time.Millisecond)
		}
		if dep.Breaker.Window == 0 {
			dep.Breaker.Window = 2
		}
		if dep.Breaker.FailureRateThreshold == 0 {
			dep.Breaker.FailureRateThreshold = 0.5
		}
		if dep.Breaker.OpenWait == 0 {
			dep.Breaker.OpenWait = Duration(time.Second)
		}
		s.Dependencies[name] = dep
	}
}

func (s Spec) Validate() error {
	if s.Schema != SpecSchemaV1 {
		return fmt.Errorf("unsupported schema: %q", s.Schema)
	}
	if s.PoolSize < 1 {
		return errors.New("pool_size must be >= 1")
	}
	if len(s.Dependencies) == 0 {
		return errors.New("dependencies are required")
	}
	for _, name := range requiredDependencies {
		if _, ok := s.Dependencies[name]; !ok {
			return fmt.Errorf("missing dependency: %s", name)
		}
	}
	for name, dep := range s.Dependencies {
		if dep.BaseURL == "" {
			return fmt.Errorf("dependency %s: base_url is required", name)
		}
		if dep.Deadline <= 0 {
			return fmt.Errorf("dependency %s: deadline must be positive", name)
		}
		if dep.Retry.MaxAttempts < 1 {
			return fmt.Errorf("dependency %s: retry.max_attempts must be >= 1", name)
		}
		if dep.Retry.Wait < 0 {
			return fmt.Errorf("dependency %s: retry.wait must be >= 0", name)
		}
		if dep.Breaker.Window < 1 {
			return fmt.Errorf("dependency %s: breaker.window must be >= 1", name)
		}
		if dep.Breaker.FailureRateThreshold <= 0 || dep.Breaker.FailureRateThreshold > 1 {
			return fmt.Errorf("dependency %s: breaker.failure_rate_threshold must be in (0,1]", name)
		}
		if dep.Breaker.OpenWait <= 0 {
			return fmt.Errorf("dependency %s: breaker.open_wait must be positive", name)
		}
	}
	return nil
}
