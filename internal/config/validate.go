package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zoro11031/hosts-editor/internal/common"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors with config key names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks struct tags and the rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if cfg.Hosts.Path != "" {
		if err := common.ValidatePath(cfg.Hosts.Path); err != nil {
			return fmt.Errorf("hosts.path: %w", err)
		}
	}
	if cfg.Backup.Dir != "" {
		if err := common.ValidatePath(cfg.Backup.Dir); err != nil {
			return fmt.Errorf("backup.dir: %w", err)
		}
	}
	if cfg.Retry.MaxAttempts > 1 && cfg.Retry.BaseDelay == 0 {
		return fmt.Errorf("retry.base_delay: must be positive when retry.max_attempts > 1")
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		key := strings.TrimPrefix(e.Namespace(), "Config.")
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", key, e.Tag(), e.Value())
	}
	return err
}
