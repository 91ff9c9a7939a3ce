package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/core-tools/hsu-deploy/pkg/deployment"
	"github.com/core-tools/hsu-deploy/pkg/errors"
	"github.com/core-tools/hsu-deploy/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Simple test logger that implements logging.Logger interface
type TestLogger struct {
	infos []string
}

func (l *TestLogger) LogLevelf(level int, format string, args ...interface{}) {}
func (l *TestLogger) Debugf(format string, args ...interface{})               {}
func (l *TestLogger) Infof(format string, args ...interface{}) {
	l.infos = append(l.infos, format)
}
func (l *TestLogger) Warnf(format string, args ...interface{})  {}
func (l *TestLogger) Errorf(format string, args ...interface{}) {}

var _ logging.Logger = (*TestLogger)(nil)

func writeDescriptor(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDescriptorFromFile(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		content     string
		expectError bool
		validate    func(*testing.T, *DescriptorConfig)
	}{
		{
			name:     "comprehensive yaml",
			filename: "deployments.yaml",
			content: `
descriptor:
  name: "shop"
  log_level: "debug"

deployments:
  - name: "api"
    unit: "com.example.ApiUnit"
    options:
      instances: 4
      ha: true
      isolationGroup: "api-group"
      extraClasspath: ["lib/api.jar", "lib/common.jar"]
      config:
        http:
          port: 8080

  - name: "indexer"
    unit: "com.example.Indexer"
    enabled: false
    options:
      worker: true
      multiThreaded: true
      redeploy: true
      redeployScanPeriod: 500
      redeployGracePeriod: 2000
`,
			validate: func(t *testing.T, config *DescriptorConfig) {
				assert.Equal(t, "shop", config.Descriptor.Name)
				assert.Equal(t, "debug", config.Descriptor.LogLevel)
				require.Len(t, config.Deployments, 2)

				api := config.Deployments[0]
				assert.Equal(t, "api", api.Name)
				assert.Equal(t, "com.example.ApiUnit", api.Unit)
				assert.True(t, *api.Enabled)
				assert.Equal(t, 4, api.Options.Instances())
				assert.True(t, api.Options.IsHA())
				group, ok := api.Options.IsolationGroup()
				assert.True(t, ok)
				assert.Equal(t, "api-group", group)
				assert.Equal(t, []string{"lib/api.jar", "lib/common.jar"}, api.Options.ExtraClasspath())
				assert.Equal(t, map[string]interface{}{"port": 8080}, api.Options.Config()["http"])

				indexer := config.Deployments[1]
				assert.False(t, *indexer.Enabled)
				assert.True(t, indexer.Options.IsWorker())
				assert.True(t, indexer.Options.IsMultiThreaded())
				assert.True(t, indexer.Options.IsRedeploy())
				assert.Equal(t, int64(500), indexer.Options.RedeployScanPeriod())
				assert.Equal(t, int64(2000), indexer.Options.RedeployGracePeriod())
			},
		},
		{
			name:     "minimal yaml gets defaults",
			filename: "minimal.yml",
			content: `
deployments:
  - name: "web"
    unit: "web.js"
`,
			validate: func(t *testing.T, config *DescriptorConfig) {
				assert.Equal(t, "info", config.Descriptor.LogLevel)
				require.Len(t, config.Deployments, 1)
				assert.True(t, *config.Deployments[0].Enabled)
				assert.True(t, config.Deployments[0].Options.Equal(deployment.NewDeploymentOptions()))
			},
		},
		{
			name:     "json descriptor",
			filename: "deployments.json",
			content: `{
  "deployments": [
    {"name": "api", "unit": "api.Main", "options": {"instances": 2, "worker": true}}
  ]
}`,
			validate: func(t *testing.T, config *DescriptorConfig) {
				require.Len(t, config.Deployments, 1)
				expected := deployment.NewDeploymentOptions().SetInstances(2).SetWorker(true)
				assert.True(t, config.Deployments[0].Options.Equal(expected))
			},
		},
		{
			name:        "invalid yaml",
			filename:    "broken.yaml",
			content:     "deployments: [unclosed",
			expectError: true,
		},
		{
			name:     "invalid options value",
			filename: "bad-options.yaml",
			content: `
deployments:
  - name: "api"
    unit: "api.Main"
    options:
      redeployScanPeriod: 0
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDescriptor(t, tt.filename, tt.content)

			config, err := LoadDescriptorFromFile(path)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, config)
			if tt.validate != nil {
				tt.validate(t, config)
			}
		})
	}
}

func TestLoadDescriptorFromFile_ErrorTypes(t *testing.T) {
	_, err := LoadDescriptorFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsIOError(err))

	path := writeDescriptor(t, "bad.yaml", "deployments:\n  - name: api\n    options:\n      instances: lots\n")
	_, err = LoadDescriptorFromFile(path)
	assert.True(t, errors.IsDeserializationError(err))

	var domainErr *errors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, path, domainErr.Context["filename"])

	path = writeDescriptor(t, "broken.yaml", "deployments: {")
	_, err = LoadDescriptorFromFile(path)
	assert.True(t, errors.IsValidationError(err))
}

func TestParseDescriptor_UnsupportedFormat(t *testing.T) {
	_, err := ParseDescriptor([]byte(""), "toml")
	assert.True(t, errors.IsValidationError(err))
}

func TestValidateDescriptor(t *testing.T) {
	enabled := true

	tests := []struct {
		name        string
		config      *DescriptorConfig
		expectError bool
		errorCount  int
	}{
		{
			name:        "nil descriptor",
			config:      nil,
			expectError: true,
		},
		{
			name:   "empty deployments",
			config: &DescriptorConfig{Descriptor: DescriptorOptions{LogLevel: "info"}},
		},
		{
			name: "valid deployments",
			config: &DescriptorConfig{
				Deployments: []DeploymentConfig{
					{Name: "api", Unit: "api.Main", Enabled: &enabled, Options: deployment.NewDeploymentOptions().SetInstances(3)},
					{Name: "worker_1", Unit: "worker.Main"},
				},
			},
		},
		{
			name: "invalid log level",
			config: &DescriptorConfig{
				Descriptor: DescriptorOptions{LogLevel: "verbose"},
			},
			expectError: true,
			errorCount:  1,
		},
		{
			name: "duplicate names",
			config: &DescriptorConfig{
				Deployments: []DeploymentConfig{
					{Name: "api", Unit: "a"},
					{Name: "api", Unit: "b"},
				},
			},
			expectError: true,
			errorCount:  1,
		},
		{
			name: "every problem is reported",
			config: &DescriptorConfig{
				Deployments: []DeploymentConfig{
					{Name: "", Unit: "a"},
					{Name: "bad name", Unit: "b"},
					{Name: "no-unit"},
					{Name: "zero", Unit: "c", Options: deployment.NewDeploymentOptions().SetInstances(0)},
					{Name: "blank-cp", Unit: "d", Options: deployment.NewDeploymentOptions().SetExtraClasspath([]string{"a.jar", ""})},
				},
			},
			expectError: true,
			errorCount:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDescriptor(tt.config)
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			if tt.errorCount > 0 {
				var collection *errors.ErrorCollection
				require.ErrorAs(t, err, &collection)
				assert.Len(t, collection.Errors, tt.errorCount)
			}
		})
	}
}

func TestValidateDeploymentName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{"valid_simple", "api-1", false},
		{"valid_with_underscore", "api_1", false},
		{"valid_alphanumeric", "Api123", false},
		{"empty", "", true},
		{"too_long", string(make([]byte, 65)), true},
		{"invalid_chars", "api@1", true},
		{"invalid_space", "api 1", true},
		{"invalid_dot", "com.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeploymentName(tt.input)
			if tt.shouldErr {
				assert.True(t, errors.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnabledDeployments(t *testing.T) {
	disabled := false
	apiOptions := deployment.NewDeploymentOptions().
		SetInstances(2).
		SetExtraClasspath([]string{"a.jar"})

	config := &DescriptorConfig{
		Deployments: []DeploymentConfig{
			{Name: "api", Unit: "api.Main", Options: apiOptions},
			{Name: "old", Unit: "old.Main", Enabled: &disabled},
			{Name: "bare", Unit: "bare.Main"},
		},
	}

	logger := &TestLogger{}
	deployments, err := EnabledDeployments(config, logger)
	require.NoError(t, err)
	require.Len(t, deployments, 2)

	assert.Equal(t, "api", deployments[0].Name)
	assert.Equal(t, "api.Main", deployments[0].Unit)
	assert.True(t, deployments[0].Options.Equal(apiOptions))
	assert.Len(t, logger.infos, 1)

	deployments[0].Options.ExtraClasspath()[0] = "changed.jar"
	assert.Equal(t, "a.jar", apiOptions.ExtraClasspath()[0], "returned options must be copies")

	assert.Equal(t, "bare", deployments[1].Name)
	assert.True(t, deployments[1].Options.Equal(deployment.NewDeploymentOptions()))

	_, err = EnabledDeployments(nil, logger)
	assert.Error(t, err)
}
