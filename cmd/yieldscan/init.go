package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/yieldscan/internal/config"
)

// InitCommand represents the init command
type InitCommand struct {
	force      bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{
		configPath: config.ConfigFileName,
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize yieldscan configuration file",
		Long: `Create a commented .yieldscan.toml holding every setting at its default.

yieldscan discovers .yieldscan.toml walking up from the analyzed path, and
falls back to the [tool.yieldscan] table of pyproject.toml.

Examples:
  yieldscan init
  yieldscan init --config ci/yieldscan.toml
  yieldscan init --force`,
		Args: cobra.NoArgs,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", config.ConfigFileName, "Configuration file path")
	return cmd
}

func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !i.force {
		return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configDir, err)
	}

	content, err := config.GenerateDefaultConfigTOML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Edit it and run 'yieldscan routes .' to use it.\n")
	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
