package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// The extractor recognizes exactly two shapes inside a boss module:
// the mob registration list, whose trailing comments carry English names,
// and the enUS locale block of L.<key> = "<name>" assignments. The Nth ID
// pairs with the Nth assignment; declaration order is assumed stable in
// the upstream source. If it ever is not, pairing goes silently wrong
// rather than failing (known limitation of the source format).

const (
	idsStart  = "mod:RegisterEnableMob("
	varsStart = "if L then"
)

// idPattern matches one registered mob ID with its trailing name comment.
var idPattern = regexp.MustCompile(`^\s*(\d+),?\s*--\s*(.+?)\s*$`)

// varPattern matches one locale assignment inside the enUS block.
var varPattern = regexp.MustCompile(`^\s*L\.(\w+)\s*=\s*"(.+?)"`)

// modulePattern matches the boss module declaration and captures its name.
var modulePattern = regexp.MustCompile(`^\s*local\s+mod(?:\s*,\s*CL)?\s*=\s*BigWigs:NewBoss\("(.*?)"`)

type scanState int

const (
	stateNeither scanState = iota
	stateIDs
	stateVars
)

type idEntry struct {
	id      int64
	comment string
}

type varEntry struct {
	key  string
	text string
}

// ParseFile extracts records from a Lua boss module on disk.
func ParseFile(path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse extracts records from Lua source text. Content problems are
// reported as warnings in the result; only read failures return an error.
func Parse(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		ids     []idEntry
		vars    []varEntry
		module  string
		state   = stateNeither
		idsDone bool
		varDone bool
	)

	for scanner.Scan() {
		line := scanner.Text()

		switch state {
		case stateIDs:
			if m := idPattern.FindStringSubmatch(line); m != nil {
				id, err := strconv.ParseInt(m[1], 10, 64)
				if err != nil {
					continue
				}
				ids = append(ids, idEntry{id: id, comment: m[2]})
			} else if strings.Contains(line, ")") {
				state = stateNeither
				idsDone = true
			}
		case stateVars:
			if m := varPattern.FindStringSubmatch(line); m != nil {
				vars = append(vars, varEntry{key: m[1], text: m[2]})
			} else if strings.TrimSpace(line) == "end" {
				state = stateNeither
				varDone = true
			}
		default:
			if strings.HasPrefix(line, idsStart) {
				state = stateIDs
			} else if strings.HasPrefix(line, varsStart) {
				state = stateVars
			} else if m := modulePattern.FindStringSubmatch(line); m != nil {
				module = m[1]
			}
		}

		if idsDone && varDone {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan source file: %w", err)
	}

	return pair(module, ids, vars), nil
}

// pair correlates the two lists positionally and collects warnings for
// every element left without a counterpart.
func pair(module string, ids []idEntry, vars []varEntry) *Result {
	result := &Result{Module: module}

	if len(ids) == 0 {
		result.Warnings = append(result.Warnings, "no mob registration entries found")
	}
	if len(vars) == 0 {
		result.Warnings = append(result.Warnings, "no locale assignments found")
	}

	n := len(ids)
	if len(vars) < n {
		n = len(vars)
	}

	for i := 0; i < n; i++ {
		result.Records = append(result.Records, Record{
			ID:   ids[i].id,
			Key:  vars[i].key,
			Text: vars[i].text,
		})
	}

	for _, extra := range ids[n:] {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("unmatched ID %d (%q)", extra.id, extra.comment))
	}
	for _, extra := range vars[n:] {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("unmatched key %s (%q)", extra.key, extra.text))
	}

	return result
}
