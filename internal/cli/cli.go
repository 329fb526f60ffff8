package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/shadergen/internal/app"
	"github.com/specialistvlad/shadergen/internal/publish"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("shadergen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
ShaderGen - Generates shaders from templates and node graphs.

Usage:
  shadergen [options] [PROJECT_PATH]
  shadergen -migrate LEGACY_FILE [options]

Arguments:
  PROJECT_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	projectFlag := flagSet.String("project", "", "Path to the project file or directory.")
	pFlag := flagSet.String("p", "", "Path to the project file or directory (shorthand).")
	templatesFlag := flagSet.String("templates", "templates", "Directory containing .shader templates.")
	outFlag := flagSet.String("out", "", "Output .shader file for a single shader, or output directory. Empty prints to stdout.")
	saveFlag := flagSet.String("save", "", "Directory shader documents are saved to and restored from.")
	migrateFlag := flagSet.String("migrate", "", "Legacy document to convert instead of building.")
	legacyVersionFlag := flagSet.Int("legacy-version", 0, "Version the legacy document was saved with. 0 is the current version.")
	watchFlag := flagSet.Bool("watch", false, "Rebuild whenever a template or project file changes.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	publishURLFlag := flagSet.String("publish-url", "", "Socket.IO server every built shader is published to.")
	publishTimeoutFlag := flagSet.Duration("publish-timeout", publish.DefaultTimeout, "Timeout for connecting to the publish server.")
	publishNamespaceFlag := flagSet.String("publish-namespace", publish.DefaultNamespace, "Socket.IO namespace shaders are published on.")
	publishInsecureFlag := flagSet.Bool("publish-insecure", false, "Skip TLS certificate verification of the publish server.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *projectFlag != "" {
		path = *projectFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Project path determined.", "path", path)

	if path == "" && *migrateFlag == "" {
		slog.Debug("No project path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if *publishTimeoutFlag <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid publish-timeout: must be positive"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ProjectPath:     path,
		TemplatesPath:   *templatesFlag,
		OutPath:         *outFlag,
		SavePath:        *saveFlag,
		MigratePath:     *migrateFlag,
		LegacyVersion:   *legacyVersionFlag,
		Watch:           *watchFlag,
		PublishURL:      *publishURLFlag,
		PublishTimeout:   *publishTimeoutFlag,
		PublishNamespace: *publishNamespaceFlag,
		PublishInsecure:  *publishInsecureFlag,
		HealthcheckPort:  *healthPortFlag,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
