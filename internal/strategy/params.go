package strategy

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// DecodeParams merges overrides onto a copy of defaults and validates the
// result. Keys that are not fields of T are rejected.
func DecodeParams[T any](defaults T, overrides map[string]any) (T, error) {
	params := defaults

	if len(overrides) > 0 {
		raw, err := yaml.Marshal(overrides)
		if err != nil {
			return defaults, errors.NewConfigurationError("strategy.params", "cannot encode overrides",
				errors.Wrap(errors.ErrCodeInvalidType, "marshal overrides", err))
		}

		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(true)

		if err := decoder.Decode(&params); err != nil {
			return defaults, errors.NewConfigurationError("strategy.params", "unrecognized or mistyped parameter",
				errors.Wrap(errors.ErrCodeUnknownParameter, "decode params", err))
		}
	}

	if err := validate.Struct(params); err != nil {
		return defaults, errors.NewConfigurationError("strategy.params", "parameter validation failed",
			errors.Wrap(errors.ErrCodeInvalidParameter, "validate params", err))
	}

	return params, nil
}

// ParamsMap flattens a parameter struct into its YAML keys.
func ParamsMap(params any) map[string]any {
	out := make(map[string]any)

	raw, err := yaml.Marshal(params)
	if err != nil {
		return out
	}

	if err := yaml.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}

	return out
}

// ToJSONSchema converts a struct to a JSON schema.
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	r.FieldNameTag = "yaml"
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
