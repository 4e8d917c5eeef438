package transform

import (
	"fmt"
	"strings"
)

// Target is the language level of the output.
type Target uint8

const (
	ES3 Target = iota + 1
	ES5
	ES2015
	ES2016
	ES2017
	ES2018
	ES2019
	ES2020
	ESNext
)

// DefaultTarget is used when neither flags nor the manifest choose one.
const DefaultTarget = ES2019

var targetNames = map[Target]string{
	ES3:    "es3",
	ES5:    "es5",
	ES2015: "es2015",
	ES2016: "es2016",
	ES2017: "es2017",
	ES2018: "es2018",
	ES2019: "es2019",
	ES2020: "es2020",
	ESNext: "esnext",
}

func (t Target) String() string {
	if s, ok := targetNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseTarget accepts the lower-case names and "es6" as an alias of es2015.
func ParseTarget(s string) (Target, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "es6" {
		return ES2015, nil
	}
	for t, name := range targetNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown target %q (expected es3|es5|es2015..es2020|esnext)", s)
}

// Feature is a language feature some targets lack.
type Feature uint8

const (
	FeatureOptionalChaining Feature = iota + 1
	FeatureNullishCoalescing
	FeatureObjectAssign
)

// Supports reports whether code for t may use f natively.
func (t Target) Supports(f Feature) bool {
	switch f {
	case FeatureOptionalChaining, FeatureNullishCoalescing:
		return t >= ES2020
	case FeatureObjectAssign:
		return t >= ES2015
	}
	return false
}
