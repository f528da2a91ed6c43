package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/skeptic/internal/model"
)

const configHierarchy = `Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (SKEPTIC_*, e.g. SKEPTIC_LLM_PROVIDER=openai)
  3. Config file (~/.skeptic/config.yaml or --config)
  4. Built-in defaults`

const apiKeyNotes = `API keys are read from the environment or a .env file:
  GEMINI_API_KEY     gemini (default provider)
  OPENAI_API_KEY     openai
  ANTHROPIC_API_KEY  anthropic
  OLLAMA_BASE_URL    ollama (default http://localhost:11434)
Set llm.provider to "none" for heuristic-only analysis.`

const banner = "═══════════════════════════════════════════════════════════"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage skeptic configuration",
	Long:  "Inspect and create skeptic configuration files.\n\n" + configHierarchy,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Print the configuration after merging defaults, the config file and the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		source := "No configuration file found (using defaults)"
		if used := viper.ConfigFileUsed(); used != "" {
			if _, statErr := os.Stat(used); statErr == nil {
				source = "Configuration file: " + used
			}
		}
		fmt.Fprintf(os.Stderr, "%s\n\n", source)

		data, err := marshalConfig(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n  Effective Configuration\n%s\n\n%s\n%s\n\n%s\n\n", banner, banner, data, banner, configHierarchy)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create a default configuration file at --config, or ~/.skeptic/config.yaml when unset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("find home directory: %w", err)
			}
			path = filepath.Join(home, ".skeptic", "config.yaml")
		}

		if err := initConfigFile(path); err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n\n", path)
		fmt.Printf("View it with:  skeptic config show\n")
		fmt.Printf("Edit it with:  $EDITOR %s\n", path)
		return nil
	},
}

// initConfigFile writes the default configuration to path. An existing
// file is never overwritten.
func initConfigFile(path string) (err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("config file already exists: %s (delete it first to recreate)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	return writeDefaultConfig(f)
}

// writeDefaultConfig writes the defaults as YAML framed by comment notes
func writeDefaultConfig(w io.Writer) error {
	data, err := marshalConfig(model.DefaultConfig())
	if err != nil {
		return err
	}

	var out bytes.Buffer
	out.WriteString("# skeptic configuration file\n#\n")
	out.WriteString(commented(configHierarchy))
	out.WriteString("\n")
	out.Write(data)
	out.WriteString("\n")
	out.WriteString(commented(apiKeyNotes))

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func marshalConfig(cfg *model.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf.Bytes(), nil
}

// commented prefixes every line with "# "
func commented(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(strings.TrimRight("# "+line, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
