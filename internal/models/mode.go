package models

import (
	"fmt"
	"strings"
)

// MatchKind selects which predicate a scan applies to each candidate file.
type MatchKind int

const (
	// KindExtension matches on the filename suffix "." + extension.
	KindExtension MatchKind = iota
	// KindSEGB matches on the "SEGB" magic in the file header.
	KindSEGB
)

// String returns the string representation of MatchKind.
func (k MatchKind) String() string {
	switch k {
	case KindExtension:
		return "extension"
	case KindSEGB:
		return "segb"
	default:
		return "unknown"
	}
}

// FileTypes lists the accepted --file-type values, in the order they are shown to users.
var FileTypes = []string{"db", "plist", "ips", "segb"}

// MatchMode is the predicate chosen for a whole run.
// Extension is only meaningful when Kind is KindExtension.
type MatchMode struct {
	Kind      MatchKind
	Extension string
}

// ExtensionMode returns a MatchMode matching files ending in "." + ext.
func ExtensionMode(ext string) MatchMode {
	return MatchMode{Kind: KindExtension, Extension: ext}
}

// SEGBMode returns a MatchMode matching files by their SEGB signature.
func SEGBMode() MatchMode {
	return MatchMode{Kind: KindSEGB}
}

// ParseFileType maps a --file-type value onto a MatchMode.
// Only the exact tokens in FileTypes are accepted. Extension matching is
// case-sensitive, so "DB" is rejected rather than silently searching for .db.
func ParseFileType(fileType string) (MatchMode, error) {
	switch fileType {
	case "segb":
		return SEGBMode(), nil
	case "db", "plist", "ips":
		return ExtensionMode(fileType), nil
	default:
		return MatchMode{}, fmt.Errorf("invalid file type %q, must be one of: %s", fileType, strings.Join(FileTypes, ", "))
	}
}

// FileType returns the --file-type token that selects this mode.
func (m MatchMode) FileType() string {
	if m.Kind == KindSEGB {
		return "segb"
	}
	return m.Extension
}

// String describes the mode for logs and reports.
func (m MatchMode) String() string {
	switch m.Kind {
	case KindSEGB:
		return "segb signature"
	case KindExtension:
		return fmt.Sprintf("extension .%s", m.Extension)
	default:
		return "unknown"
	}
}
