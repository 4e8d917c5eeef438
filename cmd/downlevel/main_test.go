package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downlevel/internal/driver"
	"downlevel/internal/helpers"
	"downlevel/internal/printer"
	"downlevel/internal/project"
	"downlevel/internal/transform"
)

// a?.b;
const optionalDoc = `{"version": 1, "source": "a?.b;", "body": [
  {"kind": "expression", "start": 0, "end": 5, "children": [
    {"kind": "member", "name": "b", "optional": true, "start": 0, "end": 4, "children": [
      {"kind": "ident", "name": "a", "start": 0, "end": 1}
    ]}
  ]}
]}`

func TestResolveLowerSettings(t *testing.T) {
	got, err := resolveLowerSettings(lowerFlags{}, nil)
	require.NoError(t, err)
	assert.Equal(t, lowerSettings{
		target:   transform.ES2019,
		maxDepth: project.DefaultMaxDepth,
		outDir:   project.DefaultOutDir,
		helpers:  printer.HelpersInline,
	}, got)

	m := &project.Manifest{Root: "/proj", Config: project.Config{
		Lower: project.LowerConfig{Target: "es5", MaxDepth: 64},
		Emit:  project.EmitConfig{OutDir: "build", Helpers: "none"},
	}}
	got, err = resolveLowerSettings(lowerFlags{target: "es2020", maxDepth: 9}, m)
	require.NoError(t, err)
	assert.Equal(t, transform.ES5, got.target, "unset flags must not shadow the manifest")
	assert.Equal(t, 64, got.maxDepth)
	assert.Equal(t, filepath.Join("/proj", "build"), got.outDir)
	assert.Equal(t, printer.HelpersNone, got.helpers)

	got, err = resolveLowerSettings(lowerFlags{
		target: "es6", targetSet: true,
		outDir: "out", outDirSet: true,
		helpers: "inline", helpersSet: true,
		maxDepth: 9, maxDepthSet: true,
	}, m)
	require.NoError(t, err)
	assert.Equal(t, lowerSettings{target: transform.ES2015, maxDepth: 9, outDir: "out", helpers: printer.HelpersInline}, got)

	_, err = resolveLowerSettings(lowerFlags{target: "es1999", targetSet: true}, nil)
	assert.Error(t, err)
	_, err = resolveLowerSettings(lowerFlags{maxDepth: 0, maxDepthSet: true}, nil)
	assert.Error(t, err)
	_, err = resolveLowerSettings(lowerFlags{helpers: "bundled", helpersSet: true}, nil)
	assert.Error(t, err)
}

func TestSelectHelpers(t *testing.T) {
	all, err := selectHelpers(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(helpers.All()))

	ids, err := selectHelpers([]string{"__spread", "downlevel:decorate"})
	require.NoError(t, err)
	assert.Equal(t, []helpers.ID{helpers.Decorate, helpers.Spread}, ids)

	_, err = selectHelpers([]string{"__nope"})
	assert.Error(t, err)
}

func TestRenderHelpers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderHelpersJSON(&buf, []helpers.ID{helpers.Spread}, false))
	var payload []helperPayload
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	require.Len(t, payload, 1)
	assert.Equal(t, "downlevel:spread", payload[0].Name)
	assert.Equal(t, []string{"downlevel:read"}, payload[0].Deps)
	assert.Empty(t, payload[0].Text)

	buf.Reset()
	require.NoError(t, renderHelpersPretty(&buf, []helpers.ID{helpers.Read}, true))
	assert.Contains(t, buf.String(), "downlevel:read")
	assert.Contains(t, buf.String(), "__read")
	assert.Contains(t, buf.String(), "// downlevel:read\n")
}

func TestRunInitWritesManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runInit(cmd, []string{dir}))
	assert.Contains(t, out.String(), `"app"`)

	cfg, err := project.LoadConfig(filepath.Join(dir, project.ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Project.Name)
	assert.Equal(t, project.DefaultTarget, cfg.Lower.Target)

	err = runInit(cmd, []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestLowerCommandWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "opt.json"), []byte(optionalDoc), 0o644))
	dist := filepath.Join(dir, "dist")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"lower", "--ui", "off", "--quiet", "--color", "off", "--out-dir", dist, "--target", "es2019", src})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	require.NoError(t, rootCmd.Execute(), stderr.String())
	got, err := os.ReadFile(filepath.Join(dist, "opt.js"))
	require.NoError(t, err)
	assert.Equal(t, "a === null || a === void 0 ? void 0 : a.b;\n", string(got))
	assert.Empty(t, stderr.String())
}

func TestPrintOutputsSeparatesFiles(t *testing.T) {
	res := &driver.Result{Files: []driver.FileResult{
		{Input: "a.json", Output: "dist/a.js", Code: []byte("a;\n")},
		{Input: "b.json", Output: "dist/b.js", Failed: true},
		{Input: "c.json", Output: "dist/c.js", Code: []byte("c;\n")},
	}}
	var buf bytes.Buffer
	require.NoError(t, printOutputs(&buf, res, false))
	assert.Equal(t, "// dist/a.js\na;\n// dist/c.js\nc;\n", buf.String())

	buf.Reset()
	single := &driver.Result{Files: res.Files[:1]}
	require.NoError(t, printOutputs(&buf, single, false))
	assert.Equal(t, "a;\n", buf.String())
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.2.3", Helpers: "abc"}
	require.NoError(t, renderVersionJSON(&buf, info, versionOptions{format: "json", showHash: true}))

	var payload versionPayload
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "downlevel", payload.Tool)
	assert.Equal(t, "1.2.3", payload.Version)
	assert.Equal(t, "abc", payload.Helpers)
	assert.Equal(t, "unknown", payload.GitCommit)
	assert.Empty(t, payload.BuildDate)
}
