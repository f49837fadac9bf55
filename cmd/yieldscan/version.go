package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/yieldscan/internal/version"
)

// VersionCommand represents the version command
type VersionCommand struct {
	short   bool
	jsonOut bool
}

// NewVersionCommand creates a new version command
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

// CreateCobraCommand creates the cobra command for version display
func (v *VersionCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version, commit, build and platform information.

Examples:
  yieldscan version
  yieldscan version --short
  yieldscan version --json`,
		Args: cobra.NoArgs,
		RunE: v.runVersion,
	}

	cmd.Flags().BoolVarP(&v.short, "short", "s", false, "Show only version number")
	cmd.Flags().BoolVar(&v.jsonOut, "json", false, "Print version information as JSON")
	cmd.MarkFlagsMutuallyExclusive("short", "json")
	return cmd
}

type versionReport struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

func (v *VersionCommand) runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch {
	case v.short:
		fmt.Fprintln(out, version.Short())
	case v.jsonOut:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(versionReport{
			Name:     version.Name,
			Version:  version.Short(),
			Commit:   version.Revision(),
			Date:     version.Date,
			Go:       runtime.Version(),
			Platform: runtime.GOOS + "/" + runtime.GOARCH,
		})
	default:
		fmt.Fprintln(out, version.Info())
	}
	return nil
}

// NewVersionCmd creates and returns the version cobra command
func NewVersionCmd() *cobra.Command {
	return NewVersionCommand().CreateCobraCommand()
}
