package mdreport

import (
	"path/filepath"
	"strings"
)

// fileIdentity is the identity encoded in a report filename:
// <code>_<company>_<source>_<hash8>.md. Company names may themselves contain
// underscores, so code is the first segment and source/hash the last two.
type fileIdentity struct {
	Code    string
	Company string
	Source  string
	Hash    string
}

// parseFilename decodes the report filename convention. ok is false when the
// name has too few segments or the leading segment is not a 4-digit code.
func parseFilename(path string) (fileIdentity, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(base, "_")
	if len(parts) < 4 {
		return fileIdentity{}, false
	}

	id := fileIdentity{
		Code:    parts[0],
		Company: strings.Join(parts[1:len(parts)-2], "_"),
		Source:  parts[len(parts)-2],
		Hash:    parts[len(parts)-1],
	}
	if !isStockCode(id.Code) || id.Source == "" || id.Hash == "" {
		return fileIdentity{}, false
	}
	return id, true
}

// isStockCode reports whether s is a 4-digit Taiwan stock code.
func isStockCode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
