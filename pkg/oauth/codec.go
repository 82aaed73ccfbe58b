package oauth

import (
	"encoding/json"
	"fmt"

	"github.com/platform-mesh/oauth-relation/pkg/relation"
)

// Decode parses every field of raw and validates the result against schema. Fields the
// schema declares as strings are kept verbatim; any other field is parsed as JSON and
// falls back to the raw string when it is not JSON. A nil schema skips validation.
func Decode(raw relation.Databag, schema *Schema) (map[string]any, error) {
	data := make(map[string]any, len(raw))
	for k, v := range raw {
		if schema.stringProperty(k) {
			data[k] = v
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			data[k] = v
			continue
		}
		data[k] = parsed
	}

	if schema != nil {
		if err := schema.Validate(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Encode validates value against schema and flattens it into relation fields. value may be
// a map or a struct with json tags. Arrays and objects are written as JSON text, strings
// verbatim, other scalars as their JSON literal. Nil fields and empty strings are left out
// before validation, since an empty value deletes the key on the channel. A nil schema
// skips validation.
func Encode(value any, schema *Schema) (relation.Databag, error) {
	data, err := normalize(value)
	if err != nil {
		return nil, err
	}
	for k, v := range data {
		if v == nil || v == "" {
			delete(data, k)
		}
	}

	if schema != nil {
		if err := schema.Validate(data); err != nil {
			return nil, err
		}
	}

	raw := make(relation.Databag, len(data))
	for k, v := range data {
		switch typed := v.(type) {
		case string:
			raw[k] = typed
		default:
			encoded, err := json.Marshal(typed)
			if err != nil {
				return nil, &DataValidationError{Data: data, Err: fmt.Errorf("failed to encode field %s: %w", k, err)}
			}
			raw[k] = string(encoded)
		}
	}
	return raw, nil
}

// normalize converts value into generic JSON values.
func normalize(value any) (map[string]any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, &DataValidationError{Err: fmt.Errorf("failed to encode relation data: %w", err)}
	}

	var data map[string]any
	if err := json.Unmarshal(encoded, &data); err != nil {
		return nil, &DataValidationError{Err: fmt.Errorf("relation data must be an object: %w", err)}
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// into converts decoded relation data into a typed value.
func into(data map[string]any, out any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return &DataValidationError{Data: data, Err: err}
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return &DataValidationError{Data: data, Err: err}
	}
	return nil
}

// DecodeProviderData decodes and validates a Provider partition.
func DecodeProviderData(raw relation.Databag) (ProviderData, error) {
	data, err := Decode(raw, ProviderSchema)
	if err != nil {
		return ProviderData{}, err
	}

	var decoded ProviderData
	if err := into(data, &decoded); err != nil {
		return ProviderData{}, err
	}
	return decoded, nil
}

// DecodeClientConfig decodes and validates a Requirer partition.
func DecodeClientConfig(raw relation.Databag) (ClientConfig, error) {
	data, err := Decode(raw, RequirerSchema)
	if err != nil {
		return ClientConfig{}, err
	}

	var cfg ClientConfig
	if err := into(data, &cfg); err != nil {
		return ClientConfig{}, err
	}
	cfg.Audience = nonNil(cfg.Audience)
	cfg.GrantTypes = nonNil(cfg.GrantTypes)
	return cfg, nil
}

// encodeClientConfig is the Requirer side of the wire format.
func encodeClientConfig(cfg ClientConfig) (relation.Databag, error) {
	return Encode(cfg.data(), RequirerSchema)
}
