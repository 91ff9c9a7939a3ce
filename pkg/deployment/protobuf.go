package deployment

import (
	"encoding/json"

	"github.com/core-tools/hsu-deploy/pkg/errors"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts the compact document into a google.protobuf.Struct.
func (o *DeploymentOptions) ToStruct() (*structpb.Struct, error) {
	doc := structValue(o.ToDocument()).(map[string]interface{})
	s, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, errors.NewInternalError("failed to convert deployment options to protobuf struct", err)
	}
	return s, nil
}

// FromStruct decodes options from a google.protobuf.Struct.
func FromStruct(s *structpb.Struct) (*DeploymentOptions, error) {
	if s == nil {
		return NewDeploymentOptions(), nil
	}
	return FromDocument(s.AsMap())
}

// structValue rewrites values structpb.NewValue does not accept.
func structValue(v interface{}) interface{} {
	switch value := v.(type) {
	case Document:
		return structValue(map[string]interface{}(value))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = structValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = structValue(item)
		}
		return out
	case []string:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = item
		}
		return out
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	default:
		return value
	}
}
