package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2request/internal/emitter/jsemitter"
	"github.com/mark3labs/swagger2request/internal/output"
	"github.com/mark3labs/swagger2request/internal/pipeline"
	genspec "github.com/mark3labs/swagger2request/internal/spec"
)

// Environment keys read by generate. A .env file may set them too.
const (
	EnvSource        = "SWAGGER_API_JSON"
	EnvOut           = "API_PREFIX"
	EnvRequestModule = "REQUEST_URL"
)

// defaultEnvFile is read when present; --env-file makes it mandatory.
const defaultEnvFile = ".env"

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, .env, environment, config file values, and CLI overrides.
type GenerateConfig struct {
	Source           string
	Out              string
	RequestModule    string
	ExcludePrefixes  []string
	EnvFile          string
	ConfigPath       string
	DryRun           bool
	BestEffort       bool
	LegacyModelsPath bool
	Verbose          bool

	Stdout io.Writer
	Stderr io.Writer
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		RequestModule:   jsemitter.DefaultRequestModule,
		ExcludePrefixes: append([]string(nil), jsemitter.DefaultExcludePrefixes...),
	}
}

var (
	generateRunner = runGenerate
	lookupEnv      = os.LookupEnv
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate JavaScript request modules and model classes from a Swagger document",
		Long: "Generate one request module per API group and one model class per definition " +
			"from a Swagger 2.0 or OpenAPI 3 document. The output directory is cleared first. " +
			"Options can be provided via flags, config files, environment variables, or a .env file.",
		Example: strings.TrimSpace(`  swagger2request generate --source http://localhost:8080/v2/api-docs --out ./src/api
  SWAGGER_API_JSON=./swagger.json API_PREFIX=./src/api swagger2request generate
  swagger2request --config swagger2request.yaml generate --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Stdout = cmd.OutOrStdout()
			cfg.Stderr = cmd.ErrOrStderr()
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("source", "", "Path or http(s) URL of the Swagger/OpenAPI document (env "+EnvSource+")")
	flags.String("out", "", "Output root; cleared before generation (env "+EnvOut+")")
	flags.String("request-module", "", "Import path of the request helper (env "+EnvRequestModule+"); defaults to "+jsemitter.DefaultRequestModule)
	flags.String("env-file", "", "Read environment defaults from this file (defaults to ./.env when present)")
	flags.StringSlice("exclude-prefix", nil, "Skip definitions whose name starts with these prefixes; defaults to Page")
	flags.Bool("dry-run", false, "Preview planned outputs without touching the filesystem")
	flags.Bool("best-effort", false, "Log cleanup and module write failures instead of aborting")
	flags.Bool("legacy-models-path", false, "Write classes to <out><basePath>models instead of <out><basePath>/models")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, err
	}
	if err := applyEnvFile(&cfg, strings.TrimSpace(envFile)); err != nil {
		return nil, err
	}
	applyEnvOverrides(&cfg, lookupEnv)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvFile reads KEY=VALUE pairs with godotenv without touching the
// process environment. An explicit path must exist; the default may not.
func applyEnvFile(cfg *GenerateConfig, path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return newUsageErrorf("read env file %q: %v", path, err)
	}
	cfg.EnvFile = path
	applyEnvOverrides(cfg, func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
	return nil
}

func applyEnvOverrides(cfg *GenerateConfig, lookup func(string) (string, bool)) {
	setString(&cfg.Source, EnvSource, lookup)
	setString(&cfg.Out, EnvOut, lookup)
	setString(&cfg.RequestModule, EnvRequestModule, lookup)
}

func setString(dst *string, key string, lookup func(string) (string, bool)) {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("source") {
		value, err := flags.GetString("source")
		if err != nil {
			return err
		}
		cfg.Source = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("request-module") {
		value, err := flags.GetString("request-module")
		if err != nil {
			return err
		}
		cfg.RequestModule = strings.TrimSpace(value)
	}
	if flags.Changed("exclude-prefix") {
		value, err := flags.GetStringSlice("exclude-prefix")
		if err != nil {
			return err
		}
		cfg.ExcludePrefixes = sanitizeList(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("best-effort") {
		value, err := flags.GetBool("best-effort")
		if err != nil {
			return err
		}
		cfg.BestEffort = value
	}
	if flags.Changed("legacy-models-path") {
		value, err := flags.GetBool("legacy-models-path")
		if err != nil {
			return err
		}
		cfg.LegacyModelsPath = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Source = strings.TrimSpace(c.Source)
	c.Out = strings.TrimSpace(c.Out)
	c.RequestModule = strings.TrimSpace(c.RequestModule)
	if c.RequestModule == "" {
		c.RequestModule = jsemitter.DefaultRequestModule
	}
	c.ExcludePrefixes = sanitizeList(c.ExcludePrefixes)
}

func (c *GenerateConfig) validate() error {
	if c.Source == "" {
		return newUsageError("generate: --source is required (set via flag, config file, or " + EnvSource + ")")
	}
	if c.Out == "" {
		return newUsageError("generate: --out is required (set via flag, config file, or " + EnvOut + ")")
	}
	return nil
}

func (c *GenerateConfig) logger() *slog.Logger {
	w := c.Stderr
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	res, err := pipeline.Run(ctx,
		pipeline.Config{
			SourceURL:     cfg.Source,
			OutputRoot:    cfg.Out,
			RequestModule: cfg.RequestModule,
		},
		pipeline.WithLogger(cfg.logger()),
		pipeline.WithDryRun(cfg.DryRun),
		pipeline.WithBestEffort(cfg.BestEffort),
		pipeline.WithLegacyModelsPath(cfg.LegacyModelsPath),
		pipeline.WithExcludePrefixes(cfg.ExcludePrefixes),
	)
	if err != nil {
		return wrapGenerateError(err, absOut)
	}

	if cfg.DryRun {
		fmt.Fprintf(stdout, "Planned writes to %s (%d files):\n", absOut, len(res.Planned))
	} else {
		fmt.Fprintf(stdout, "Wrote %d files to %s:\n", len(res.Planned), absOut)
	}
	for _, p := range res.Planned {
		fmt.Fprintf(stdout, "- %s\n", p.RelPath)
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(stdout, "Skipped %d:\n", len(res.Skipped))
		for _, s := range res.Skipped {
			fmt.Fprintf(stdout, "- %s %s: %s\n", s.Kind, s.Name, s.Reason)
		}
	}
	return nil
}

// wrapGenerateError maps loader and filesystem failures to usage errors with
// hints. Anything else is returned unchanged.
func wrapGenerateError(err error, outDir string) error {
	var se *genspec.SpecError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("spec: %s", se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		return newUsageError(msg)
	}
	var oe *output.Error
	if errors.As(err, &oe) {
		msg := fmt.Sprintf("output error for %s: %v", outDir, err)
		if errors.Is(err, output.ErrUnsafeRoot) {
			return newUsageError(msg + "\nHint: point --out at a dedicated directory; it is deleted before generation.")
		}
		return newUsageError(msg + "\nHint: choose a different --out, check permissions, or use --best-effort.")
	}
	return err
}

func sanitizeList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageErrorf("read config file %q: %v", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageErrorf("parse config file %q: %v", path, err)
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "source", "input", "swaggerapijson":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageErrorf("config field %q: %v", key, err)
			}
			cfg.Source = str
		case "out", "apiprefix":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageErrorf("config field %q: %v", key, err)
			}
			cfg.Out = str
		case "requestmodule", "requesturl":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageErrorf("config field %q: %v", key, err)
			}
			cfg.RequestModule = str
		case "excludeprefixes":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageErrorf("config field %q: %v", key, err)
			}
			cfg.ExcludePrefixes = sanitizeList(list)
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageErrorf("config field %q: %v", key, err)
			}
			cfg.DryRun = val
		case "besteffort":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageErrorf("config field %q: %v", key, err)
			}
			cfg.BestEffort = val
		case "legacymodelspath":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageErrorf("config field %q: %v", key, err)
			}
			cfg.LegacyModelsPath = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageErrorf("config field %q: %v", key, err)
			}
			cfg.Verbose = val
		default:
			return newUsageErrorf("config file %q: unknown field %q", path, key)
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
