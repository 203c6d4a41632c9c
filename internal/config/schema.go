package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// SchemaID identifies the generated schema.
const SchemaID = "https://github.com/rxtech-lab/argo-screener/config.schema.json"

// Schema returns the indented JSON schema of the config file.
func Schema() (string, error) {
	reflector := &jsonschema.Reflector{
		FieldNameTag:   "yaml",
		DoNotReference: true,
	}

	//nolint:exhaustruct // Empty struct is intentional for schema generation
	schema := reflector.Reflect(&Config{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Argo Screener configuration"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config schema", err)
	}

	return string(data), nil
}
