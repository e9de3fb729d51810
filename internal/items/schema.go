package items

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema reflects the catalog file format into a JSON schema.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(new(Catalog))
	schema.Title = "Voxelfront Item Catalog"
	schema.Description = "Validates designer-authored materials and item definitions"
	return schema
}

// SchemaJSON renders Schema as indented JSON with a trailing newline.
func SchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
