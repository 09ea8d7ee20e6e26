// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/javascrub/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a batch Report into TOON format.
func Encode(r *model.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))
	parts = append(parts, fmt.Sprintf("summary: files=%d changed=%d unchanged=%d removed=%d failed=%d",
		len(r.Files),
		r.Count(model.StatusChanged),
		r.Count(model.StatusUnchanged),
		r.Count(model.StatusRemoved),
		r.Count(model.StatusFailed)))

	var fileRows [][]string
	for i := range r.Files {
		fr := &r.Files[i]
		if fr.Status == model.StatusFailed {
			continue
		}
		fileRows = append(fileRows, []string{
			filepath.ToSlash(fr.Path),
			filepath.ToSlash(fr.Output),
			string(fr.Status),
			strconv.Itoa(fr.Pruned),
			strconv.Itoa(fr.Stripped),
			strconv.Itoa(fr.Imports),
			strconv.Itoa(fr.Renamed),
		})
	}
	parts = append(parts, formatTabular("files",
		[]string{"path", "output", "status", "pruned", "stripped", "imports", "renamed"}, fileRows))

	var failRows [][]string
	for i := range r.Files {
		fr := &r.Files[i]
		if fr.Status != model.StatusFailed {
			continue
		}
		msg := ""
		if fr.Err != nil {
			msg = fr.Err.Error()
		}
		failRows = append(failRows, []string{filepath.ToSlash(fr.Path), msg})
	}
	if len(failRows) > 0 {
		parts = append(parts, formatTabular("failures", []string{"path", "error"}, failRows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
