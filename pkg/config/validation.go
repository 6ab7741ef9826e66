package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags and then the cross-field rules tags can't
// express. Log levels are accepted in either case; ApplyDefaults
// normalizes them.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	if cfg.Backend.Type == "badger" && cfg.Backend.Badger.Path == "" && !cfg.Backend.Badger.InMemory {
		return fmt.Errorf("backend.badger.path: required unless backend.badger.in_memory is true")
	}

	ports := map[int]string{}
	claim := func(name string, port int, enabled bool) error {
		if !enabled || port == 0 {
			return nil
		}
		if other, ok := ports[port]; ok {
			return fmt.Errorf("%s: port %d already used by %s", name, port, other)
		}
		ports[port] = name
		return nil
	}
	if err := claim("server.port", cfg.Server.Port, true); err != nil {
		return err
	}
	if err := claim("metrics.port", cfg.Metrics.Port, cfg.Metrics.Enabled); err != nil {
		return err
	}
	return claim("api.port", cfg.API.Port, cfg.API.Enabled)
}

// formatValidationError reports the first validator failure with its field path.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
