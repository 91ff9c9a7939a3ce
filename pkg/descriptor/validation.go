package descriptor

import (
	"fmt"

	"github.com/core-tools/hsu-deploy/pkg/errors"
)

const maxDeploymentNameLength = 64

// ValidateDeploymentName validates deployment name format and constraints
func ValidateDeploymentName(name string) error {
	if name == "" {
		return errors.NewValidationError("deployment name cannot be empty", nil)
	}

	if len(name) > maxDeploymentNameLength {
		return errors.NewValidationError(
			fmt.Sprintf("deployment name cannot exceed %d characters", maxDeploymentNameLength), nil)
	}

	for _, char := range name {
		if !isValidNameChar(char) {
			return errors.NewValidationError("deployment name contains invalid characters: only letters, numbers, hyphens, and underscores are allowed", nil)
		}
	}

	return nil
}

// ValidateDeployment checks what the options object itself leaves to its caller
func ValidateDeployment(d DeploymentConfig) error {
	if d.Unit == "" {
		return errors.NewValidationError("unit is required", nil)
	}

	if d.Options == nil {
		return nil
	}

	if d.Options.Instances() < 1 {
		return errors.NewValidationError(
			fmt.Sprintf("instances must be at least 1, got %d", d.Options.Instances()),
			nil,
		).WithContext("instances", d.Options.Instances())
	}

	for i, entry := range d.Options.ExtraClasspath() {
		if entry == "" {
			return errors.NewValidationError(fmt.Sprintf("extra classpath entry %d is empty", i), nil)
		}
	}

	return nil
}

func validateDescriptorOptions(options *DescriptorOptions) error {
	if options.Name != "" {
		if err := ValidateDeploymentName(options.Name); err != nil {
			return err
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if options.LogLevel != "" {
		for _, level := range validLogLevels {
			if options.LogLevel == level {
				return nil
			}
		}
		return errors.NewValidationError(
			fmt.Sprintf("invalid log level: %s", options.LogLevel),
			nil,
		).WithContext("valid_levels", "debug, info, warn, error")
	}

	return nil
}

func isValidNameChar(char rune) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == '-' || char == '_'
}
