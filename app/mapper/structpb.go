package mapper

import (
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts a JSON response type into a protobuf Struct, keeping the
// JSON field names.
func ToStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}
