package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Tree documents
	PackInfo            Code = 1000
	PackReadError       Code = 1001
	PackBadFormat       Code = 1002
	PackUnknownKind     Code = 1003
	PackDanglingRef     Code = 1004
	PackTooDeep         Code = 1005
	PackVersionMismatch Code = 1006

	// Lowering limits
	LowerInfo              Code = 2000
	LowerDepthExceeded     Code = 2001
	LowerUnsupportedTarget Code = 2002

	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	ProjInfo        Code = 5000
	ProjBadManifest Code = 5001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// Внутренние дефекты: ошибка в самом движке, не во входных данных
	DefectInternal                Code = 9000
	DefectMalformedChain          Code = 9001
	DefectMissingHelperDependency Code = 9002
	DefectUnexpectedNode          Code = 9003
	DefectUnresolvedNode          Code = 9004
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                   "Unknown error",
		PackInfo:                      "Tree document information",
		PackReadError:                 "Cannot read tree document",
		PackBadFormat:                 "Malformed tree document",
		PackUnknownKind:               "Unknown node kind in tree document",
		PackDanglingRef:               "Node reference out of range",
		PackTooDeep:                   "Tree document nesting too deep",
		PackVersionMismatch:           "Unsupported tree document version",
		LowerInfo:                     "Lowering information",
		LowerDepthExceeded:            "Expression nesting exceeds lowering depth limit",
		LowerUnsupportedTarget:        "Unsupported target",
		IOLoadFileError:               "I/O load file error",
		IOWriteFileError:              "I/O write file error",
		ProjInfo:                      "Project information",
		ProjBadManifest:               "Invalid downlevel.toml",
		ObsInfo:                       "Observability information",
		ObsTimings:                    "Pipeline timings",
		DefectInternal:                "Internal defect",
		DefectMalformedChain:          "Internal defect: malformed optional chain",
		DefectMissingHelperDependency: "Internal defect: helper requested without its dependency",
		DefectUnexpectedNode:          "Internal defect: unexpected node shape",
		DefectUnresolvedNode:          "Internal defect: node without owning file",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PCK%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("DEF%04d", ic)
	}
	return "E0000"
}

// IsDefect reports whether c signals a bug in the engine.
func (c Code) IsDefect() bool {
	return c >= DefectInternal && c < 10000
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
