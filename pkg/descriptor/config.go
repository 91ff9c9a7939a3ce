package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/core-tools/hsu-deploy/pkg/deployment"
	"github.com/core-tools/hsu-deploy/pkg/errors"
	"github.com/core-tools/hsu-deploy/pkg/logging"

	"gopkg.in/yaml.v3"
)

// DescriptorConfig represents the top-level deployment descriptor file structure
type DescriptorConfig struct {
	Descriptor  DescriptorOptions  `yaml:"descriptor" json:"descriptor"`
	Deployments []DeploymentConfig `yaml:"deployments" json:"deployments"`
}

// DescriptorOptions represents descriptor-level settings
type DescriptorOptions struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// DeploymentConfig represents a single named deployment
type DeploymentConfig struct {
	Name    string                        `yaml:"name" json:"name"`
	Unit    string                        `yaml:"unit" json:"unit"`                           // Identifier of the unit to deploy
	Enabled *bool                         `yaml:"enabled,omitempty" json:"enabled,omitempty"` // Pointer to distinguish unset from false
	Options *deployment.DeploymentOptions `yaml:"options,omitempty" json:"options,omitempty"`
}

// Deployment is an enabled deployment ready to hand to a deployment engine
type Deployment struct {
	Name    string
	Unit    string
	Options *deployment.DeploymentOptions
}

// LoadDescriptorFromFile loads a deployment descriptor from a YAML or JSON file
func LoadDescriptorFromFile(filename string) (*DescriptorConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read descriptor file", err).WithContext("filename", filename)
	}

	config, err := ParseDescriptor(data, formatFromFilename(filename))
	if err != nil {
		if domainErr, ok := err.(*errors.DomainError); ok {
			return nil, domainErr.WithContext("filename", filename)
		}
		return nil, err
	}
	return config, nil
}

// ParseDescriptor parses descriptor content in the given format ("yaml" or "json")
// and applies defaults
func ParseDescriptor(data []byte, format string) (*DescriptorConfig, error) {
	var config DescriptorConfig
	switch format {
	case "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, wrapParseError("failed to parse JSON descriptor", err)
		}
	case "yaml", "":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, wrapParseError("failed to parse YAML descriptor", err)
		}
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unsupported descriptor format: %s", format), nil).
			WithContext("supported_formats", "yaml, json")
	}

	setDescriptorDefaults(&config)
	return &config, nil
}

// Deserialization errors from the options block pass through untouched
func wrapParseError(message string, err error) error {
	if errors.IsDeserializationError(err) {
		return err
	}
	return errors.NewValidationError(message, err)
}

func formatFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

// setDescriptorDefaults applies default values to configuration
func setDescriptorDefaults(config *DescriptorConfig) {
	if config.Descriptor.LogLevel == "" {
		config.Descriptor.LogLevel = "info"
	}

	for i := range config.Deployments {
		d := &config.Deployments[i]

		// Default enabled to true if not specified
		if d.Enabled == nil {
			enabled := true
			d.Enabled = &enabled
		}

		if d.Options == nil {
			d.Options = deployment.NewDeploymentOptions()
		}
	}
}

// ValidateDescriptor validates the entire descriptor and reports every problem found
func ValidateDescriptor(config *DescriptorConfig) error {
	if config == nil {
		return errors.NewValidationError("descriptor cannot be nil", nil)
	}

	collection := errors.NewErrorCollection()

	if err := validateDescriptorOptions(&config.Descriptor); err != nil {
		collection.Add(errors.NewValidationError("invalid descriptor options", err))
	}

	seenNames := make(map[string]int)
	for i, d := range config.Deployments {
		if err := ValidateDeploymentName(d.Name); err != nil {
			collection.Add(errors.NewValidationError(
				fmt.Sprintf("invalid deployment name at index %d", i),
				err,
			).WithContext("deployment_name", d.Name))
			continue
		}

		if prevIndex, exists := seenNames[d.Name]; exists {
			collection.Add(errors.NewConflictError(
				fmt.Sprintf("duplicate deployment name '%s' found at indices %d and %d", d.Name, prevIndex, i),
				nil,
			))
			continue
		}
		seenNames[d.Name] = i

		if err := ValidateDeployment(d); err != nil {
			collection.Add(errors.NewValidationError(
				fmt.Sprintf("invalid deployment at index %d", i),
				err,
			).WithContext("deployment_name", d.Name))
		}
	}

	if collection.HasErrors() {
		return errors.NewValidationError("invalid descriptor", collection).
			WithContext("error_count", len(collection.Errors))
	}
	return nil
}

// EnabledDeployments returns independent copies of every enabled deployment
func EnabledDeployments(config *DescriptorConfig, logger logging.Logger) ([]Deployment, error) {
	if config == nil {
		return nil, errors.NewValidationError("descriptor cannot be nil", nil)
	}

	var deployments []Deployment
	for _, d := range config.Deployments {
		// Only skip if explicitly set to false
		if d.Enabled != nil && !*d.Enabled {
			logger.Infof("Skipping disabled deployment, name: %s", d.Name)
			continue
		}

		options := d.Options.Copy()
		if options == nil {
			options = deployment.NewDeploymentOptions()
		}

		logger.Debugf("Deployment %s, unit: %s, options: %s", d.Name, d.Unit, options)
		deployments = append(deployments, Deployment{
			Name:    d.Name,
			Unit:    d.Unit,
			Options: options,
		})
	}

	return deployments, nil
}
