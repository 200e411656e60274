package config

import "gopkg.in/yaml.v2"

// NewDefaultConfig creates a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		Core: Core{
			HomeFallback:    true,
			CreateTrashDirs: true,
			Verbose:         false,
			Protected: []string{
				"/",
				"/home",
				"/usr",
				"/etc",
				"/var",
				"/tmp",
			},
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Rotation: RotationConfig{
				MaxSize:  "10MB",
				MaxFiles: 3,
			},
		},
	}
}

// DefaultContents returns the default config as YAML
func DefaultContents() string {
	content, _ := yaml.Marshal(NewDefaultConfig())
	return string(content)
}
