package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const digestLength = 16

// Extension returns the lowercased extension after the last dot, without the dot.
// Names without a dot, or ending in one, have no extension.
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// StoredName derives the document name for a district's report in a period.
// The sanitized prefix keeps names readable; the digest keeps districts whose
// labels sanitize to the same text apart.
func StoredName(district string, year int, quarter, original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	ext := Extension(base)
	stem := strings.TrimSuffix(base, path.Ext(base))

	sum := sha256.Sum256([]byte(strings.Join([]string{district, strconv.Itoa(year), quarter, original}, "\x00")))
	digest := hex.EncodeToString(sum[:])[:digestLength]

	parts := make([]string, 0, 5)
	for _, p := range []string{district, strconv.Itoa(year), quarter, stem} {
		if s := sanitize(p); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, digest)

	name := strings.Join(parts, "_")
	if limit := maxNameLength - len(ext) - 1; len(name) > limit {
		name = name[len(name)-limit:]
		name = strings.TrimLeft(name, "._-")
	}
	if ext = sanitize(ext); ext != "" {
		name += "." + ext
	}
	return name
}

// sanitize folds to ASCII and keeps only characters valid in a document name.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == '_' || r == '.' || unicode.IsSpace(r) || r == '/' || r == '\\':
			b.WriteRune('_')
		}
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_-")
}
