package locale

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Entry is one key/text pair in a locale file. Inactive entries are
// written commented out, holding a placeholder a human can fill in.
type Entry struct {
	Key    string
	Text   string
	Active bool
}

// assignmentPattern matches an active or commented locale assignment.
// The text capture spans up to the last quote on the line, so escaped
// quotes inside the literal stay part of it.
var assignmentPattern = regexp.MustCompile(`^\s*(--)?\s*L\.(\w+)\s*=\s*"(.*)"`)

// unescape reverses the quoting applied when entries are written. Text
// written by render is a quoted Go literal minus its outer quotes;
// hand-edited lines that do not unquote cleanly are taken verbatim.
func unescape(s string) string {
	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return s
	}
	return unquoted
}

// ReadFile loads the entries of an existing locale file. A missing file
// is an empty locale, not an error.
func ReadFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open locale file: %w", err)
	}
	defer file.Close()

	entries, err := parseEntries(file)
	if err != nil {
		return nil, fmt.Errorf("read locale file %s: %w", path, err)
	}
	return entries, nil
}

// parseEntries scans the `if L then ... end` block for assignments.
func parseEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	inBlock := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if !inBlock {
			if strings.TrimSpace(line) == "if L then" {
				inBlock = true
			}
			continue
		}

		if strings.TrimSpace(line) == "end" {
			break
		}

		if m := assignmentPattern.FindStringSubmatch(line); m != nil {
			entries = append(entries, Entry{
				Key:    m[2],
				Text:   unescape(m[3]),
				Active: m[1] == "",
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// render produces the full locale file content for one locale.
func render(header string, entries []Entry) []byte {
	var buf bytes.Buffer

	buf.WriteString(header)
	buf.WriteByte('\n')
	buf.WriteString("if not L then return end\n")
	buf.WriteString("if L then\n")
	for _, e := range entries {
		if e.Active {
			fmt.Fprintf(&buf, "\tL.%s = %q\n", e.Key, e.Text)
		} else {
			fmt.Fprintf(&buf, "\t-- L.%s = %q\n", e.Key, e.Text)
		}
	}
	buf.WriteString("end\n")

	return buf.Bytes()
}

// WriteFile writes a locale file atomically: temp file in the target
// directory, then rename over the destination.
func WriteFile(path, header string, entries []Entry) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp locale file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(render(header, entries)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp locale file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp locale file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace locale file: %w", err)
	}
	return nil
}
