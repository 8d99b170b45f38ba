package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Declarative validation is handled by go-playground/validator via
// struct tags, with additional custom validation for rules that cannot
// be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	switch cfg.Static.Type {
	case "filesystem":
		root, _ := cfg.Static.Filesystem["root"].(string)
		if root == "" {
			return fmt.Errorf("static.filesystem: root is required")
		}
	case "s3":
		bucket, _ := cfg.Static.S3["bucket"].(string)
		if bucket == "" {
			return fmt.Errorf("static.s3: bucket is required")
		}
		region, _ := cfg.Static.S3["region"].(string)
		if region == "" {
			return fmt.Errorf("static.s3: region is required")
		}
	}

	if cfg.Server.RateBurst > 0 && cfg.Server.RateLimit == 0 {
		return fmt.Errorf("server: rate_burst requires rate_limit to be set")
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
