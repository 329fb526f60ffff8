package app

import (
	"errors"
	"time"

	"github.com/specialistvlad/shadergen/internal/publish"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectPath   string // hcl files
	TemplatesPath string // .shader template files

	// OutPath is a .shader file when the project has one shader, otherwise
	// a directory. Empty writes to the output writer.
	OutPath string
	// SavePath is the directory shader documents are saved to and loaded
	// from.
	SavePath string

	// MigratePath is a legacy document to convert instead of building.
	MigratePath   string
	LegacyVersion int

	Watch bool

	PublishURL       string
	PublishTimeout   time.Duration
	PublishNamespace string
	// PublishInsecure skips TLS certificate verification of the publish
	// server.
	PublishInsecure bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectPath == "" && cfg.MigratePath == "" {
		return nil, errors.New("ProjectPath is a required configuration field and cannot be empty")
	}
	if cfg.MigratePath != "" && cfg.Watch {
		return nil, errors.New("watch mode cannot be combined with a migration")
	}
	if cfg.LegacyVersion < 0 {
		return nil, errors.New("LegacyVersion cannot be negative")
	}
	if cfg.PublishURL != "" {
		if err := publish.ValidateURL(cfg.PublishURL); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
