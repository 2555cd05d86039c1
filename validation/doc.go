// Package validation validates configuration structs using struct tags
// (go-playground/validator) and reports failures as a single AppError.
//
//	type Config struct {
//	    BasePath string `mapstructure:"base_path" validate:"required"`
//	}
//	if err := validation.Validate(cfg); err != nil { ... }
//
// Field names in messages follow the mapstructure tag, so they match the
// keys users write in configuration files.
package validation
