package bare

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sourcemap/sourcemap"
	"rogchap.com/v8go"
)

// reStackEntry the stack entry regex
var reStackEntry = regexp.MustCompile(`at[ ]+(?P<Function>[^(]+)[ ]+\((?P<File>[^:]+):(?P<Line>\d+):(?P<Column>\d+)\)`)

// StackLogEntry stack log entry
type StackLogEntry struct {
	Function string `json:"function,omitempty"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// StackLogEntryList stack log entry list
type StackLogEntryList []*StackLogEntry

// StackTrace get the stack trace of a script exception. In debug mode the
// entries of a transformed script are remapped through its source map, so
// they point at the TypeScript source the author wrote.
func StackTrace(jserr *v8go.JSError, script *Script) string {

	if script == nil || len(script.SourceMap) == 0 || !platform.option.Debug {
		return jserr.StackTrace
	}

	entries := parseStackTrace(jserr.StackTrace)
	if len(entries) == 0 {
		return jserr.StackTrace
	}

	output, err := entries.remap(script)
	if err != nil {
		return jserr.StackTrace
	}
	return output
}

func (entry *StackLogEntry) String() string {
	return fmt.Sprintf("    at %s (%s:%d:%d)", entry.Function, entry.File, entry.Line, entry.Column)
}

func parseStackTrace(trace string) StackLogEntryList {
	res := StackLogEntryList{}
	for _, line := range strings.Split(trace, "\n") {
		match := reStackEntry.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		lineNo, _ := strconv.Atoi(match[3])
		column, _ := strconv.Atoi(match[4])
		res = append(res, &StackLogEntry{
			Function: strings.TrimSpace(match[1]),
			File:     match[2],
			Line:     lineNo,
			Column:   column,
		})
	}
	return res
}

// remap the entries through the script's source map
func (list StackLogEntryList) remap(script *Script) (string, error) {

	consumer, err := sourcemap.Parse(script.File+".map", script.SourceMap)
	if err != nil {
		return "", err
	}

	output := []string{}
	for _, entry := range list {

		if entry.File != script.File {
			output = append(output, entry.String())
			continue
		}

		source, name, line, column, ok := consumer.Source(entry.Line, entry.Column)
		if !ok {
			output = append(output, entry.String())
			continue
		}

		if source == "" {
			source = entry.File
		}
		if name == "" {
			name = entry.Function
		}
		output = append(output, (&StackLogEntry{Function: name, File: source, Line: line, Column: column}).String())
	}
	return strings.Join(output, "\n"), nil
}
