package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bibbank/creditrisk/internal/domain/errs"
	"github.com/bibbank/creditrisk/internal/domain/service"
)

// LoadPolicy returns the default engine policy with the overrides from the
// YAML file at path applied, then validates it. An empty path yields the
// validated defaults. estimatorTimeout, when positive, overrides the file.
func LoadPolicy(path string, estimatorTimeout time.Duration) (service.Policy, error) {
	policy := service.DefaultPolicy()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return service.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
		}
		if policy, err = ParsePolicy(data); err != nil {
			return service.Policy{}, err
		}
	}
	if estimatorTimeout > 0 {
		policy.EstimatorTimeout = estimatorTimeout
	}

	if err := policy.Validate(); err != nil {
		return service.Policy{}, err
	}
	return policy, nil
}

// ParsePolicy applies YAML overrides to the default policy. Unknown keys are
// rejected so a misspelled cap cannot silently fall back to its default.
func ParsePolicy(data []byte) (service.Policy, error) {
	policy := service.DefaultPolicy()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&policy); err != nil && !errors.Is(err, io.EOF) {
		return service.Policy{}, &errs.Error{
			Kind:      errs.KindConfiguration,
			Component: errs.ComponentPolicy,
			Message:   "malformed policy file",
			Err:       err,
		}
	}
	return policy, nil
}
