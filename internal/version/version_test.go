package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestVersion_DefaultValues(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotContains(t, Version, "\x1b", "Version must stay plain for ldflags and JSON")
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	orig := Version
	t.Cleanup(func() { Version = orig })

	cases := map[string]string{
		"1.2.3":                "1.2.3",
		"0.1.0-dev":            "0.1.0-dev",
		"1.2.3-rc.1+build.123": "1.2.3-rc.1+build.123",
		"nightly":              "nightly",
		"  ":                   "dev",
	}
	for in, want := range cases {
		Version = in
		assert.Equal(t, want, Colored(), in)
	}
}

func TestHelperFingerprintIsStable(t *testing.T) {
	fp := HelperFingerprint()
	assert.Len(t, fp, 12)
	assert.Equal(t, fp, HelperFingerprint())
}
