package hierarchy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *ViewHierarchy {
	t.Helper()
	vh, err := ParseFile(filepath.Join("testdata", "settings_source.json"))
	require.NoError(t, err)
	return vh
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func ids(nodes []*UINode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestParseFile_RicoDocument(t *testing.T) {
	vh := loadFixture(t)

	assert.Equal(t, "3470", vh.RequestID)
	assert.Equal(t, "com.example.app/com.example.app.MainActivity", vh.ActivityName)
	assert.Equal(t, 7, vh.Len())
	assert.Equal(t, "S", vh.Root().ID)

	t.Run("Pre-order traversal", func(t *testing.T) {
		var got []string
		for n := range vh.AllNodes() {
			got = append(got, n.ID)
		}
		assert.Equal(t, []string{"S", "toolbar", "title", "btn1", "menu", "list", "row1"}, got)

		// The sequence is restartable.
		var again []string
		for n := range vh.AllNodes() {
			again = append(again, n.ID)
		}
		assert.Equal(t, got, again)
	})

	t.Run("Attributes", func(t *testing.T) {
		btn, ok := vh.FindByID("btn1")
		require.True(t, ok)
		assert.Equal(t, "android.widget.Button", btn.Class)
		assert.Equal(t, "Settings", btn.Text)
		assert.Equal(t, "com.example.app:id/settings", btn.ResourceID)
		assert.Equal(t, Bounds{Left: 1100, Top: 40, Right: 1400, Bottom: 160}, btn.Bounds)
		assert.True(t, btn.Clickable)
		assert.True(t, btn.VisibleToUser)
		assert.Equal(t, 2, btn.Depth())
		assert.Equal(t, 3, btn.Index())
		assert.Equal(t, "toolbar", btn.Parent().ID)
	})

	t.Run("Absent and blank text", func(t *testing.T) {
		menu, _ := vh.FindByID("menu")
		assert.Equal(t, "", menu.TextOrEmpty())
		assert.False(t, menu.IsTextBearing())
		assert.Equal(t, "More options", menu.Label())

		row, _ := vh.FindByID("row1")
		assert.False(t, row.IsTextBearing())
		assert.Equal(t, "", row.Label())

		root := vh.Root()
		assert.Empty(t, root.ContentDesc, "null content-desc entries are dropped")
	})
}

func TestFindByID_EveryNode(t *testing.T) {
	vh := loadFixture(t)
	for n := range vh.AllNodes() {
		got, ok := vh.FindByID(n.ID)
		require.True(t, ok, n.ID)
		assert.Same(t, n, got)
	}
	_, ok := vh.FindByID("missing")
	assert.False(t, ok)
}

func TestParse_Idempotent(t *testing.T) {
	a := loadFixture(t)
	b := loadFixture(t)
	assert.Equal(t, snapshot(a), snapshot(b))
}

// snapshot flattens a hierarchy into comparable records.
func snapshot(vh *ViewHierarchy) []string {
	var out []string
	for n := range vh.AllNodes() {
		parent := ""
		if n.Parent() != nil {
			parent = n.Parent().ID
		}
		out = append(out, strings.Join([]string{
			n.ID, parent, n.Class, n.Text, n.ResourceID,
			strings.Join(n.ContentDesc, "|"),
		}, ";"))
	}
	return out
}

func TestElementRef_Navigation(t *testing.T) {
	vh := loadFixture(t)

	el, err := vh.Resolve("btn1")
	require.NoError(t, err)
	assert.Same(t, vh, el.Hierarchy())

	assert.Equal(t, []string{"S", "toolbar"}, ids(el.Ancestors()))
	assert.Equal(t, []string{"title", "menu"}, ids(el.Siblings()))

	root, err := vh.Resolve("S")
	require.NoError(t, err)
	assert.Empty(t, root.Ancestors())
	assert.Empty(t, root.Siblings())

	var desc []string
	for n := range root.Descendants() {
		desc = append(desc, n.ID)
	}
	assert.Equal(t, []string{"toolbar", "title", "btn1", "menu", "list", "row1"}, desc)

	t.Run("Early stop", func(t *testing.T) {
		var first []string
		for n := range root.Descendants() {
			first = append(first, n.ID)
			if len(first) == 2 {
				break
			}
		}
		assert.Equal(t, []string{"toolbar", "title"}, first)
	})

	t.Run("Subtree text", func(t *testing.T) {
		toolbar, err := vh.Resolve("toolbar")
		require.NoError(t, err)
		assert.Equal(t, "My App Settings", toolbar.SubtreeText())
		assert.Equal(t, "My App Settings", ScreenText(vh))
	})

	assert.Equal(t, 2, vh.MaxDepth())
	assert.Equal(t, []string{"title", "btn1"}, ids(vh.TextNodes()))
}

func TestResolve_Missing(t *testing.T) {
	vh := loadFixture(t)

	_, err := vh.Resolve("missing")
	require.Error(t, err)

	var nf *ElementNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ID)
	assert.Equal(t, "3470", nf.RequestID)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"missing root", `{"request_id": "1", "activity": {}}`, ErrMissingRoot},
		{"short bounds", `{"root": {"pointer": "a", "bounds": [0, 0, 10]}}`, ErrMalformedBounds},
		{"fractional bounds", `{"root": {"pointer": "a", "bounds": [0, 0, 10.5, 3]}}`, ErrMalformedBounds},
		{"string bounds", `{"root": {"pointer": "a", "bounds": "0,0,1,1"}}`, ErrMalformedBounds},
		{"duplicate id", `{"root": {"pointer": "a", "children": [{"pointer": "b"}, {"pointer": "b"}]}}`, ErrDuplicateID},
		{"missing id", `{"root": {"pointer": "a", "children": [{"class": "x"}]}}`, ErrMissingID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		_, err := Parse(strings.NewReader(`{"root": `))
		var pe *ParseError
		assert.True(t, errors.As(err, &pe))
	})

	t.Run("source path in message", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, writeFile(path, `{}`))
		_, err := ParseFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
		assert.ErrorIs(t, err, ErrMissingRoot)
	})
}

func TestParse_BareRootAndNumericPointer(t *testing.T) {
	vh, err := Parse(strings.NewReader(`{"request_id": "r1", "root": {"pointer": 12, "text": "Hi", "content-desc": "Greeting"}}`))
	require.NoError(t, err)
	assert.Equal(t, "r1", vh.RequestID)
	n, ok := vh.FindByID("12")
	require.True(t, ok)
	assert.Equal(t, []string{"Greeting"}, n.ContentDesc)
	assert.Equal(t, Bounds{}, n.Bounds)
	assert.Equal(t, "Hi", n.Label())
}

func TestBounds(t *testing.T) {
	b := Bounds{Left: 10, Top: 20, Right: 110, Bottom: 70}
	assert.Equal(t, 100, b.Width())
	assert.Equal(t, 50, b.Height())
	assert.Equal(t, 5000, b.Area())

	inverted := Bounds{Left: 10, Top: 10, Right: 0, Bottom: 0}
	assert.Equal(t, 0, inverted.Area())
}
