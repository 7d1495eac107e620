package sourcemaps

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sourcemap/sourcemap"
)

// framePattern recognizes a stack frame line of the shape
// "at <label>(<file>:<line>:<col>)", with the label never containing an
// opening parenthesis. Anything else is an opaque line.
var framePattern = regexp.MustCompile(`at ([^(]+)\((.+):(\d+):(\d+)\)`)

// Retrace rewrites every recognizable stack frame line of stack through the
// document loaded under key and returns the result. Lines that aren't frames,
// and frames whose position the map doesn't know, pass through verbatim. Any
// internal failure, including a missing key, degrades to returning stack
// unchanged; Retrace never fails and never mutates the store.
func (s *Store) Retrace(stack, key string) string {
	doc, ok := s.Get(key)
	if !ok {
		return stack
	}
	remapped, err := retrace(doc, stack)
	if err != nil {
		s.logger.WithError(err).Debug("Couldn't retrace stack, returning it unchanged")
		return stack
	}
	return remapped
}

// retrace does the actual work and reports failures, which the exported
// boundary above collapses into a pass-through. The remap is all-or-nothing:
// a failure on any single line discards the work done on the others.
func retrace(doc *Document, stack string) (remapped string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while retracing stack: %v", r)
		}
	}()

	consumer, err := sourcemap.Parse("", doc.raw)
	if err != nil {
		return "", err
	}

	lines := strings.Split(stack, "\n")
	for i, line := range lines {
		m := framePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, err := strconv.Atoi(m[3])
		if err != nil {
			return "", err
		}
		colNo, err := strconv.Atoi(m[4])
		if err != nil {
			return "", err
		}
		// Positions are passed to the lookup exactly as the client reported
		// them, mirroring how the frontends feed their traces back.
		source, name, origLine, origCol, ok := consumer.Source(lineNo, colNo)
		if !ok || source == "" {
			continue
		}
		resolved := fmt.Sprintf("%s:%d:%d", source, origLine, origCol)
		if name != "" {
			resolved += " at " + name
		}
		lines[i] = resolved
	}
	return strings.Join(lines, "\n"), nil
}
