// Package validation provides configuration and input validation.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as
// INVALID_INPUT errors listing every offending field.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    BaseURL string `mapstructure:"base_url" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Required("resource", cfg.Resource).
//	    HTTPURL("client.base_url", cfg.Client.BaseURL).
//	    Err()
package validation
