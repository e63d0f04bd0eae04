package document

import (
	_ "embed"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/vidyasagar/framehop/internal/nav"
)

//go:embed sample.yaml
var sampleYAML []byte

const resolveCacheSize = 256

// Node is an element in the document tree.
type Node struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Kind     nav.Kind `yaml:"kind"`
	Children []*Node  `yaml:"children,omitempty"`
}

// Page is a top-level canvas holding a tree of nodes.
type Page struct {
	ID    string  `yaml:"id"`
	Name  string  `yaml:"name"`
	Nodes []*Node `yaml:"nodes"`
}

// Document is an in-memory host document. It resolves element ids, owns the
// selection and the active page, and reports selection changes to
// registered listeners synchronously.
type Document struct {
	Name  string  `yaml:"name"`
	Pages []*Page `yaml:"pages"`

	index      map[string]located
	activePage string
	selection  string
	listeners  []func(id string)
	cache      *lru.Cache[string, nav.Element]
}

type located struct {
	node *Node
	page *Page
}

// Load reads a YAML document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return Parse(data)
}

// Sample returns the bundled example document.
func Sample() *Document {
	doc, err := Parse(sampleYAML)
	if err != nil {
		panic(fmt.Sprintf("bundled sample document: %v", err))
	}
	return doc
}

// Parse decodes a YAML document and indexes its elements.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("parsing document: no pages")
	}
	cache, err := lru.New[string, nav.Element](resolveCacheSize)
	if err != nil {
		return nil, err
	}
	doc.cache = cache
	if err := doc.reindex(); err != nil {
		return nil, err
	}
	doc.activePage = doc.Pages[0].ID
	return &doc, nil
}

func (d *Document) reindex() error {
	d.index = make(map[string]located)
	pages := make(map[string]bool)
	for _, p := range d.Pages {
		if pages[p.ID] || p.ID == "" {
			return fmt.Errorf("page %q: missing or duplicate id", p.Name)
		}
		pages[p.ID] = true
		var walk func(nodes []*Node) error
		walk = func(nodes []*Node) error {
			for _, n := range nodes {
				if _, dup := d.index[n.ID]; dup || n.ID == "" {
					return fmt.Errorf("node %q on page %q: missing or duplicate id", n.Name, p.Name)
				}
				d.index[n.ID] = located{node: n, page: p}
				if err := walk(n.Children); err != nil {
					return err
				}
			}
			return nil
		}
		if err := walk(p.Nodes); err != nil {
			return err
		}
	}
	d.cache.Purge()
	return nil
}

// Resolve implements nav.Resolver.
func (d *Document) Resolve(id string) (nav.Element, bool) {
	if el, ok := d.cache.Get(id); ok {
		return el, true
	}
	loc, ok := d.index[id]
	if !ok {
		return nav.Element{}, false
	}
	el := nav.Element{
		ID:       loc.node.ID,
		Name:     loc.node.Name,
		PageID:   loc.page.ID,
		PageName: loc.page.Name,
		Kind:     loc.node.Kind,
	}
	d.cache.Add(id, el)
	return el, true
}

// CurrentSelection implements nav.SelectionPort.
func (d *Document) CurrentSelection() (string, bool) {
	return d.selection, d.selection != ""
}

// Select implements nav.SelectionPort. Selecting an element on another page
// makes that page active.
func (d *Document) Select(id string) error {
	loc, ok := d.index[id]
	if !ok {
		return fmt.Errorf("select %s: %w", id, nav.ErrElementNotFound)
	}
	d.activePage = loc.page.ID
	d.setSelection(id)
	return nil
}

// OnSelectionChanged implements nav.SelectionPort.
func (d *Document) OnSelectionChanged(fn func(id string)) {
	d.listeners = append(d.listeners, fn)
}

// ClearSelection deselects everything.
func (d *Document) ClearSelection() {
	d.setSelection("")
}

func (d *Document) setSelection(id string) {
	if d.selection == id {
		return
	}
	d.selection = id
	for _, fn := range d.listeners {
		fn(id)
	}
}

// ActivePage returns the id of the page being viewed.
func (d *Document) ActivePage() string {
	return d.activePage
}

// SetActivePage switches pages. The selection does not carry across pages.
func (d *Document) SetActivePage(pageID string) error {
	for _, p := range d.Pages {
		if p.ID == pageID {
			if d.activePage != pageID {
				d.activePage = pageID
				d.setSelection("")
			}
			return nil
		}
	}
	return fmt.Errorf("page %s: %w", pageID, nav.ErrElementNotFound)
}

// Rename changes an element's name. Returns false if the element does not exist.
func (d *Document) Rename(id, name string) bool {
	loc, ok := d.index[id]
	if !ok {
		return false
	}
	loc.node.Name = name
	d.cache.Remove(id)
	return true
}

// Delete removes an element and its descendants. Deleting the selected
// element, or an ancestor of it, clears the selection.
func (d *Document) Delete(id string) bool {
	loc, ok := d.index[id]
	if !ok {
		return false
	}
	loc.page.Nodes = removeNode(loc.page.Nodes, id)

	selectionGone := false
	var forget func(n *Node)
	forget = func(n *Node) {
		if n.ID == d.selection {
			selectionGone = true
		}
		delete(d.index, n.ID)
		d.cache.Remove(n.ID)
		for _, c := range n.Children {
			forget(c)
		}
	}
	forget(loc.node)

	if selectionGone {
		d.setSelection("")
	}
	return true
}

func removeNode(nodes []*Node, id string) []*Node {
	for i, n := range nodes {
		if n.ID == id {
			return append(nodes[:i], nodes[i+1:]...)
		}
		n.Children = removeNode(n.Children, id)
	}
	return nodes
}

// Row is one line of the flattened document outline.
type Row struct {
	PageID   string
	PageName string
	Node     *Node // nil for page header rows
	Depth    int
}

// Outline flattens all pages into display rows, page headers first.
func (d *Document) Outline() []Row {
	var rows []Row
	for _, p := range d.Pages {
		rows = append(rows, Row{PageID: p.ID, PageName: p.Name})
		var walk func(nodes []*Node, depth int)
		walk = func(nodes []*Node, depth int) {
			for _, n := range nodes {
				rows = append(rows, Row{PageID: p.ID, PageName: p.Name, Node: n, Depth: depth})
				walk(n.Children, depth+1)
			}
		}
		walk(p.Nodes, 1)
	}
	return rows
}
