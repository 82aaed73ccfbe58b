package oauth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	ErrInvalidRedirectURI = errors.New("invalid redirect uri")
	ErrInvalidGrantType   = errors.New("invalid grant type")
	ErrInvalidAuthMethod  = errors.New("invalid token endpoint auth method")
)

// ConfigError reports a ClientConfig that violates policy. Kind is one of the
// ErrInvalid* sentinels and is matched by errors.Is.
type ConfigError struct {
	Kind  error
	Value string
}

func (e *ConfigError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrInvalidGrantType):
		return fmt.Sprintf("oauth: %s %q, must be one of %v", e.Kind, e.Value, AllowedGrantTypes)
	case errors.Is(e.Kind, ErrInvalidAuthMethod):
		return fmt.Sprintf("oauth: %s %q, must be one of %v", e.Kind, e.Value, AllowedTokenEndpointAuthMethods)
	}
	return fmt.Sprintf("oauth: %s %q", e.Kind, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.Kind }

func newConfigError(kind error, value string) *ConfigError {
	return &ConfigError{Kind: kind, Value: value}
}

func IsConfigError(err error) (*ConfigError, bool) {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr, true
	}
	return nil, false
}

// DataValidationError reports relation data that does not match a schema, or local data
// that cannot be serialised. It carries the offending data and the schema id.
type DataValidationError struct {
	Schema string
	Data   map[string]any
	Err    error
}

func (e *DataValidationError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("oauth: invalid relation data: %v", e.Err)
	}
	return fmt.Sprintf("oauth: relation data does not match schema %s: %s", e.Schema, schemaReason(e.Err))
}

// schemaReason reports a schema violation by JSON pointer and reason, without the schema
// and value dump of openapi3.SchemaError.
func schemaReason(err error) string {
	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return fmt.Sprint(err)
	}
	pointer := schemaErr.JSONPointer()
	if len(pointer) == 0 {
		return schemaErr.Reason
	}
	return fmt.Sprintf("/%s: %s", strings.Join(pointer, "/"), schemaErr.Reason)
}

func (e *DataValidationError) Unwrap() error { return e.Err }

func IsDataValidationError(err error) (*DataValidationError, bool) {
	var dvErr *DataValidationError
	if errors.As(err, &dvErr) {
		return dvErr, true
	}
	return nil, false
}
