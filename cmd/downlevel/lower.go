package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"downlevel/internal/diag"
	"downlevel/internal/driver"
	"downlevel/internal/observ"
	"downlevel/internal/printer"
	"downlevel/internal/project"
	"downlevel/internal/trace"
	"downlevel/internal/transform"
)

const noManifestMessage = "no downlevel.toml found\nplease name the documents to lower, e.g.:\n  downlevel lower path/to/trees"

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] [files|dirs...]",
	Short: "Lower tree documents to JavaScript for the selected target",
	Long: `Lower reads .jspack (msgpack) and .json tree documents, rewrites optional
chaining and nullish coalescing when the target lacks them, and writes one
<name>.js per document. Directories are searched recursively. Without
arguments the project containing downlevel.toml is lowered.

Flags override downlevel.toml, which overrides the built-in defaults.`,
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().String("target", project.DefaultTarget, "output language level (es3|es5|es2015..es2020|esnext)")
	lowerCmd.Flags().String("out-dir", project.DefaultOutDir, "directory for .js outputs (- prints to stdout)")
	lowerCmd.Flags().Int("max-depth", project.DefaultMaxDepth, "maximum expression nesting accepted")
	lowerCmd.Flags().String("helpers", project.DefaultHelpers, "helper definitions (inline|none)")
	lowerCmd.Flags().Bool("diff", false, "print a unified diff per file instead of writing outputs")
	lowerCmd.Flags().Int("jobs", 0, "parallel files (0 = GOMAXPROCS)")
	lowerCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	lowerCmd.Flags().String("diagnostics-format", "pretty", "diagnostics format (pretty|short)")
}

// lowerFlags holds flag values and whether the user set them, so unset
// flags fall back to the manifest rather than to their defaults.
type lowerFlags struct {
	target, outDir, helpers          string
	maxDepth                         int
	targetSet, outDirSet, helpersSet bool
	maxDepthSet                      bool
}

type lowerSettings struct {
	target   transform.Target
	maxDepth int
	outDir   string
	helpers  printer.HelperMode
}

func readLowerFlags(cmd *cobra.Command) (lowerFlags, error) {
	var lf lowerFlags
	var err error
	flags := cmd.Flags()
	if lf.target, err = flags.GetString("target"); err != nil {
		return lf, err
	}
	if lf.outDir, err = flags.GetString("out-dir"); err != nil {
		return lf, err
	}
	if lf.helpers, err = flags.GetString("helpers"); err != nil {
		return lf, err
	}
	if lf.maxDepth, err = flags.GetInt("max-depth"); err != nil {
		return lf, err
	}
	lf.targetSet = flags.Changed("target")
	lf.outDirSet = flags.Changed("out-dir")
	lf.helpersSet = flags.Changed("helpers")
	lf.maxDepthSet = flags.Changed("max-depth")
	return lf, nil
}

// resolveLowerSettings merges flags over the manifest over the defaults.
// A manifest out_dir is resolved against the project root; a flag value
// against the working directory.
func resolveLowerSettings(lf lowerFlags, manifest *project.Manifest) (lowerSettings, error) {
	targetName, helpersName := project.DefaultTarget, project.DefaultHelpers
	maxDepth, outDir := project.DefaultMaxDepth, project.DefaultOutDir
	if manifest != nil {
		targetName = manifest.Config.Lower.Target
		helpersName = manifest.Config.Emit.Helpers
		maxDepth = manifest.Config.Lower.MaxDepth
		outDir = manifest.OutDir()
	}
	if lf.targetSet {
		targetName = lf.target
	}
	if lf.helpersSet {
		helpersName = lf.helpers
	}
	if lf.maxDepthSet {
		maxDepth = lf.maxDepth
	}
	if lf.outDirSet {
		outDir = lf.outDir
	}

	target, err := transform.ParseTarget(targetName)
	if err != nil {
		return lowerSettings{}, err
	}
	helpers, err := printer.ParseHelperMode(helpersName)
	if err != nil {
		return lowerSettings{}, err
	}
	if maxDepth <= 0 {
		return lowerSettings{}, fmt.Errorf("--max-depth must be positive, got %d", maxDepth)
	}
	if strings.TrimSpace(outDir) == "" {
		return lowerSettings{}, errors.New("--out-dir must not be empty")
	}
	return lowerSettings{target: target, maxDepth: maxDepth, outDir: outDir, helpers: helpers}, nil
}

func runLower(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	lf, err := readLowerFlags(cmd)
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	diagFormat, err := cmd.Flags().GetString("diagnostics-format")
	if err != nil {
		return err
	}
	if diagFormat != "pretty" && diagFormat != "short" {
		return fmt.Errorf("unsupported diagnostics format %q (must be pretty or short)", diagFormat)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	manifest, found, err := project.LoadManifest(".")
	if err != nil {
		return err
	}
	if !found {
		manifest = nil
	}
	settings, err := resolveLowerSettings(lf, manifest)
	if err != nil {
		return err
	}

	paths := args
	baseDir := ""
	switch {
	case len(paths) == 0 && manifest == nil:
		return errors.New(noManifestMessage)
	case len(paths) == 0:
		paths = []string{manifest.Root}
		baseDir = manifest.Root
	case len(paths) == 1:
		if st, statErr := os.Stat(paths[0]); statErr == nil && st.IsDir() {
			baseDir = paths[0]
		}
	}
	inputs, err := driver.CollectInputs(paths)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no tree documents (.jspack, .json) found in %s", strings.Join(paths, ", "))
	}

	toStdout := diff || settings.outDir == "-"
	timer := observ.NewTimer()
	opts := driver.Options{
		Target:         settings.target,
		MaxDepth:       settings.maxDepth,
		Jobs:           jobs,
		OutDir:         settings.outDir,
		BaseDir:        baseDir,
		Helpers:        settings.helpers,
		Diff:           diff,
		MaxDiagnostics: maxDiagnostics,
		Timer:          timer,
	}
	if toStdout {
		opts.OutDir = ""
	}

	ctx := cmd.Context()
	var res *driver.Result
	if shouldUseTUI(uiModeValue) && !toStdout && !quiet {
		res, err = runLowerWithUI(ctx, "downlevel lower", inputs, opts)
	} else {
		res, err = driver.Run(ctx, inputs, opts)
	}
	if res != nil {
		if printErr := printDiagnostics(cmd, res, diagFormat); printErr != nil {
			return printErr
		}
	}
	if errors.Is(err, driver.ErrAborted) {
		dumpTraceRing(trace.FromContext(ctx), cmd.ErrOrStderr())
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if toStdout {
		if err := printOutputs(out, res, diff); err != nil {
			return err
		}
	}
	if timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if !quiet && !toStdout {
		printLowerSummary(cmd.ErrOrStderr(), res, settings)
	}
	if failed := res.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(res.Files))
	}
	return nil
}

func printDiagnostics(cmd *cobra.Command, res *driver.Result, format string) error {
	if res.Bag.Len() == 0 {
		return nil
	}
	res.Bag.Sort()
	res.Bag.Dedup()
	w := cmd.ErrOrStderr()
	if format == "short" {
		_, err := io.WriteString(w, diag.FormatShort(res.Bag.Items(), res.Sources, true))
		return err
	}
	color, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	return diag.FormatPretty(w, res.Bag.Items(), res.Sources, diag.PrettyOptions{Color: color})
}

// printOutputs writes diffs or code to w. Code of several files is
// separated by a comment naming each output.
func printOutputs(w io.Writer, res *driver.Result, diff bool) error {
	for i := range res.Files {
		fr := &res.Files[i]
		if fr.Failed {
			continue
		}
		var err error
		switch {
		case diff:
			_, err = io.WriteString(w, fr.Diff)
		case len(res.Files) > 1:
			_, err = fmt.Fprintf(w, "// %s\n%s", filepath.ToSlash(fr.Output), fr.Code)
		default:
			_, err = w.Write(fr.Code)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func printLowerSummary(w io.Writer, res *driver.Result, settings lowerSettings) {
	written, changed := 0, 0
	for i := range res.Files {
		if res.Files[i].Written {
			written++
		}
		if res.Files[i].Changed {
			changed++
		}
	}
	fmt.Fprintf(w, "lowered %d files for %s (%d changed) into %s\n", written, settings.target, changed, settings.outDir)
}
