package deployment

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/core-tools/hsu-deploy/pkg/errors"
)

// LoadFromFile reads options from a .json file, or from YAML for any other extension.
func LoadFromFile(filename string) (*DeploymentOptions, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read deployment options file", err).WithContext("filename", filename)
	}

	var o *DeploymentOptions
	if strings.ToLower(filepath.Ext(filename)) == ".json" {
		o, err = FromJSON(data)
	} else {
		o, err = FromYAML(data)
	}
	if err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			return nil, domainErr.WithContext("filename", filename)
		}
		return nil, err
	}
	return o, nil
}
