package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2request/internal/output"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
	Stdout     io.Writer
}

// defaultConfigFile is where init writes when --out is omitted.
const defaultConfigFile = "swagger2request.yaml"

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2request configuration file",
		Long:  "Scaffold a commented swagger2request configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
				Stdout:     cmd.OutOrStdout(),
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	disk := output.Disk{}
	if err := disk.MkdirAll(filepath.Dir(absPath)); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if err := disk.WriteFile(absPath, []byte(content)); err != nil {
		return newUsageError(fmt.Sprintf("init: %v\nHint: choose a different --out or check directory permissions.", err))
	}

	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	fmt.Fprintf(stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# swagger2request configuration (YAML)
# All fields are optional. Precedence, lowest first: defaults, .env file,
# environment, this file, command-line flags.

# Path or http(s) URL of the Swagger/OpenAPI document (env SWAGGER_API_JSON).
# source: http://localhost:8080/v2/api-docs

# Output root. It is deleted and regenerated on every run (env API_PREFIX).
# out: ./src/api

# Import path of the request helper used by generated modules (env REQUEST_URL).
# requestModule: "@/utils/request"

# Definitions starting with these prefixes get no model class.
# excludePrefixes: [Page]

# Preview planned outputs without touching the filesystem.
# dryRun: false

# Log cleanup and module write failures instead of aborting.
# bestEffort: false

# Write classes to <out><basePath>models (no separator) like older trees.
# legacyModelsPath: false

# Enable verbose logging.
# verbose: false
`
