package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"downlevel/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a downlevel project",
	Long: `Initialize a downlevel project by writing a downlevel.toml manifest with
the default target, depth limit and output settings. If [path|name] is
omitted, initializes the current directory. A non-existing name creates
the directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit writes downlevel.toml into the target directory, creating the
// directory if needed. The project name is the directory's base name. An
// existing manifest is never overwritten.
func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := wd
	if len(args) == 1 && args[0] != "." {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(wd, target)
		}
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "downlevel-project"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(project.DefaultManifest(name)), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := target
	if r, relErr := filepath.Rel(wd, target); relErr == nil {
		rel = r
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized downlevel project %q in %s\n", name, rel)
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	return nil
}
