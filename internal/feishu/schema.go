package feishu

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/content-strategist/internal/types"
)

//go:embed shot_schema.json
var shotSchemaJSON string

var shotSchema = gojsonschema.NewStringLoader(shotSchemaJSON)

// validateShot checks one shot entry against the embedded schema. Validation
// is advisory: findings are returned for logging and the row is written
// regardless.
func validateShot(shot types.ShotEntry) []string {
	encoded, err := json.Marshal(shot)
	if err != nil {
		return []string{fmt.Sprintf("marshal: %v", err)}
	}
	result, err := gojsonschema.Validate(shotSchema, gojsonschema.NewBytesLoader(encoded))
	if err != nil {
		return []string{fmt.Sprintf("validate: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems
}
