package deployment

import (
	"github.com/core-tools/hsu-deploy/pkg/errors"

	"gopkg.in/yaml.v3"
)

// MarshalYAML emits the same compact document as ToDocument, with json.Number
// config leaves turned into plain numbers.
func (o *DeploymentOptions) MarshalYAML() (interface{}, error) {
	return normalizeValue(o.ToDocument()), nil
}

// UnmarshalYAML decodes a YAML mapping with the same rules as FromDocument. Config
// mappings with non-string keys are rekeyed by the keys' printed form.
func (o *DeploymentOptions) UnmarshalYAML(value *yaml.Node) error {
	var doc map[string]interface{}
	if err := value.Decode(&doc); err != nil {
		return errors.NewDeserializationError("invalid deployment options YAML", err).
			WithContext("line", value.Line)
	}
	parsed, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}

// FromYAML decodes options from a YAML mapping.
func FromYAML(data []byte) (*DeploymentOptions, error) {
	o := NewDeploymentOptions()
	if err := yaml.Unmarshal(data, o); err != nil {
		if errors.IsDeserializationError(err) {
			return nil, err
		}
		return nil, errors.NewDeserializationError("invalid deployment options YAML", err)
	}
	return o, nil
}

// ToYAML returns the compact YAML encoding.
func (o *DeploymentOptions) ToYAML() ([]byte, error) {
	return yaml.Marshal(o)
}
