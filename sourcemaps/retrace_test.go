package sourcemaps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retracehq/retrace/lib/fsext"
	"github.com/retracehq/retrace/lib/testutils"
)

// The canonical two-source example from the source map format documentation:
// min.js line 1 is built from one.js, line 2 from two.js.
const twoSourceMapJSON = `{
	"version": 3,
	"file": "min.js",
	"names": ["bar", "baz", "n"],
	"sources": ["one.js", "two.js"],
	"mappings": "CAAC,IAAI,IAAM,SAAUA,GAClB,OAAOC,IAAID;CCDb,IAAI,IAAM,SAAUE,GAClB,OAAOA"
}`

func loadTestStore(t *testing.T, mapJSON string) *Store {
	t.Helper()
	fs := fsext.NewMemMapFs()
	require.NoError(t, fsext.WriteFile(fs, "/maps/main.f00ba4.js.map", []byte(mapJSON), 0o644))
	store, err := Load(fs, testutils.NewLogger(t), "/maps")
	require.NoError(t, err)
	return store
}

func TestRetraceResolvableFrame(t *testing.T) {
	t.Parallel()

	store := loadTestStore(t, twoSourceMapJSON)
	assert.Equal(t, "one.js:1:21 at bar", store.Retrace("    at bar (min.js:1:18)", KeySource))
}

func TestRetraceMixedStack(t *testing.T) {
	t.Parallel()

	store := loadTestStore(t, twoSourceMapJSON)
	stack := strings.Join([]string{
		"Error: boom",
		"    at bar (min.js:1:18)",
		"    at <anonymous>",
	}, "\n")

	remapped := store.Retrace(stack, KeySource)

	lines := strings.Split(remapped, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Error: boom", lines[0])
	assert.Equal(t, "one.js:1:21 at bar", lines[1])
	assert.Equal(t, "    at <anonymous>", lines[2])
}

func TestRetraceNonFrameLinesUntouched(t *testing.T) {
	t.Parallel()

	store := loadTestStore(t, twoSourceMapJSON)
	for _, line := range []string{
		"",
		"Error: something broke",
		"    at processTicksAndRejections",
		"random text with (parens) but no position",
	} {
		assert.Equal(t, line, store.Retrace(line, KeySource))
	}
}

func TestRetraceUnknownPositionUntouched(t *testing.T) {
	t.Parallel()

	store := loadTestStore(t, twoSourceMapJSON)
	line := "    at mystery (min.js:99:1)"
	assert.Equal(t, line, store.Retrace(line, KeySource))
}

func TestRetraceMissingKeyIsIdentity(t *testing.T) {
	t.Parallel()

	store := loadTestStore(t, twoSourceMapJSON)
	stack := "    at bar (min.js:1:18)"
	assert.Equal(t, stack, store.Retrace(stack, "other"))
}

func TestRetraceNilStoreIsIdentity(t *testing.T) {
	t.Parallel()

	var store *Store
	stack := "    at bar (min.js:1:18)"
	assert.Equal(t, stack, store.Retrace(stack, KeySource))
}

func TestRetraceBadConsumerIsIdentity(t *testing.T) {
	t.Parallel()

	// Valid JSON, but not a consumable source map.
	store := loadTestStore(t, `{"version":2,"file":"min.js","mappings":""}`)
	stack := "    at bar (min.js:1:18)"
	assert.Equal(t, stack, store.Retrace(stack, KeySource))
}
