package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidyasagar/framehop/internal/nav"
)

const testDoc = `
name: Test
pages:
  - id: "p1"
    name: One
    nodes:
      - id: "a"
        name: Frame A
        kind: FRAME
        children:
          - id: "a1"
            name: Label
            kind: TEXT
      - id: "s"
        name: Section
        kind: SECTION
  - id: "p2"
    name: Two
    nodes:
      - id: "b"
        name: Frame B
        kind: FRAME
`

func parse(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse([]byte(testDoc))
	require.NoError(t, err)
	return doc
}

func TestParseAndResolve(t *testing.T) {
	doc := parse(t)

	el, ok := doc.Resolve("b")
	require.True(t, ok)
	assert.Equal(t, nav.Element{ID: "b", Name: "Frame B", PageID: "p2", PageName: "Two", Kind: nav.KindFrame}, el)

	_, ok = doc.Resolve("missing")
	assert.False(t, ok)
	_, ok = doc.Resolve("p1")
	assert.False(t, ok, "pages are not elements")
	assert.Equal(t, "p1", doc.ActivePage())
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := map[string]string{
		"no pages":       `name: Empty`,
		"duplicate node": "pages:\n  - id: p1\n    nodes:\n      - {id: a, kind: FRAME}\n      - {id: a, kind: FRAME}\n",
		"duplicate page": "pages:\n  - id: p1\n  - id: p1\n",
		"not yaml":       "pages: [",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDoc), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Test", doc.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	doc := Sample()
	assert.NotEmpty(t, doc.Pages)
	el, ok := doc.Resolve("4:1")
	require.True(t, ok)
	assert.True(t, el.Kind.IsSection())
}

func TestSelectNotifiesAndSwitchesPage(t *testing.T) {
	doc := parse(t)
	var got []string
	doc.OnSelectionChanged(func(id string) { got = append(got, id) })

	require.NoError(t, doc.Select("a"))
	require.NoError(t, doc.Select("a"))
	require.NoError(t, doc.Select("b"))

	assert.Equal(t, []string{"a", "b"}, got, "no notification when selection is unchanged")
	assert.Equal(t, "p2", doc.ActivePage())
	id, ok := doc.CurrentSelection()
	assert.True(t, ok)
	assert.Equal(t, "b", id)

	assert.ErrorIs(t, doc.Select("nope"), nav.ErrElementNotFound)

	require.NoError(t, doc.SetActivePage("p1"))
	_, ok = doc.CurrentSelection()
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b", ""}, got)
	assert.Error(t, doc.SetActivePage("p9"))
}

func TestRenameInvalidatesCache(t *testing.T) {
	doc := parse(t)
	el, _ := doc.Resolve("a")
	assert.Equal(t, "Frame A", el.Name)

	require.True(t, doc.Rename("a", "Hero"))
	el, _ = doc.Resolve("a")
	assert.Equal(t, "Hero", el.Name)
	assert.False(t, doc.Rename("zzz", "x"))
}

func TestDeleteRemovesSubtree(t *testing.T) {
	doc := parse(t)
	require.NoError(t, doc.Select("a1"))
	_, ok := doc.Resolve("a1")
	require.True(t, ok)
	var got []string
	doc.OnSelectionChanged(func(id string) { got = append(got, id) })

	require.True(t, doc.Delete("a"))

	_, ok = doc.Resolve("a")
	assert.False(t, ok)
	_, ok = doc.Resolve("a1")
	assert.False(t, ok, "cached descendants are evicted")
	assert.Equal(t, []string{""}, got)
	assert.False(t, doc.Delete("a"))

	for _, row := range doc.Outline() {
		if row.Node != nil {
			assert.NotEqual(t, "a", row.Node.ID)
		}
	}
}

func TestOutline(t *testing.T) {
	doc := parse(t)
	rows := doc.Outline()
	require.Len(t, rows, 6)
	assert.Nil(t, rows[0].Node)
	assert.Equal(t, "One", rows[0].PageName)
	assert.Equal(t, "a1", rows[2].Node.ID)
	assert.Equal(t, 2, rows[2].Depth)
	assert.Nil(t, rows[4].Node)
	assert.Equal(t, "p2", rows[5].PageID)
}

// The document drives a tracker end to end: user selections are recorded,
// tracker navigation is not.
func TestDocumentDrivesTracker(t *testing.T) {
	doc := parse(t)
	tr := nav.NewTracker(nav.Options{Resolver: doc, Selection: doc})
	tr.Start()

	require.NoError(t, doc.Select("a"))
	require.NoError(t, doc.Select("a1")) // TEXT, ignored
	require.NoError(t, doc.Select("s"))
	require.NoError(t, doc.Select("b"))

	require.True(t, tr.HopBackward())
	assert.Equal(t, "p1", doc.ActivePage())
	require.NoError(t, tr.JumpTo("b"))

	st := tr.State()
	require.Len(t, st.History, 3)
	assert.Equal(t, "b", st.History[2].ElementID)
	assert.Equal(t, 2, st.CurrentIndex)

	// Nothing is left pending: the next user selection is recorded.
	require.NoError(t, doc.Select("a"))
	assert.Equal(t, 0, tr.State().CurrentIndex)
}
