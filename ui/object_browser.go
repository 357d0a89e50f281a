package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"prefab-bundler/ds"
	"prefab-bundler/ubundle"
	"prefab-bundler/ubundle/uobject"
)

// ObjectBrowser lists the objects of a bundle. Enter opens an object, and inside an object
// enter follows the selected reference. Esc goes back one step.
type ObjectBrowser struct {
	path    string
	entries []ubundle.ObjectEntry
	arena   *uobject.Arena
	// history holds the indices of the opened objects; empty means the object list is shown
	history *ds.Stack[int]
	cursor  int
	status  string
}

func CreateObjectBrowser(path string, bundle *ubundle.Bundle) (*ObjectBrowser, error) {
	file, err := bundle.SerializedFile()
	if err != nil {
		return nil, errors.Wrap(err, "CreateObjectBrowser error")
	}
	entries, err := bundle.ObjectEntries()
	if err != nil {
		return nil, errors.Wrap(err, "CreateObjectBrowser error")
	}
	return &ObjectBrowser{
		path:    path,
		entries: entries,
		arena:   file.Arena,
		history: ds.NewStack[int](),
	}, nil
}

// references lists the non-null references of the opened object.
func (b *ObjectBrowser) references() []*uobject.Ref {
	if b.history.IsEmpty() {
		return nil
	}
	o := b.entries[b.history.Peek()].Object
	return lo.Filter(
		o.OutgoingReferences(),
		func(r *uobject.Ref, _ int) bool {
			return !r.IsNull()
		},
	)
}

func (b *ObjectBrowser) numChoices() int {
	if b.history.IsEmpty() {
		return len(b.entries)
	}
	return len(b.references())
}

func (b *ObjectBrowser) Selected() (ubundle.ObjectEntry, bool) {
	if b.history.IsEmpty() {
		return ubundle.ObjectEntry{}, false
	}
	return b.entries[b.history.Peek()], true
}

func (b *ObjectBrowser) open() {
	if b.numChoices() == 0 {
		return
	}
	if b.history.IsEmpty() {
		b.history.Push(b.cursor)
		b.cursor = 0
		return
	}

	r := b.references()[b.cursor]
	target := r.Target()
	if target == nil {
		b.status = fmt.Sprintf("%s points outside this file", ds.DumpJSON(r.PPtr()))
		return
	}
	handle, ok := b.arena.HandleOf(target)
	if !ok {
		b.status = "reference target is not in the file"
		return
	}
	b.history.Push(int(handle))
	b.cursor = 0
}

func (b *ObjectBrowser) back() {
	if b.history.IsEmpty() {
		return
	}
	b.cursor = b.history.Pop()
	if !b.history.IsEmpty() {
		b.cursor = 0
	}
}

func (b *ObjectBrowser) Init() tea.Cmd {
	return nil
}

func (b *ObjectBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	b.status = ""
	switch keyMsg.String() {
	case "ctrl+c", "q":
		return b, tea.Quit
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < b.numChoices()-1 {
			b.cursor++
		}
	case "enter":
		b.open()
	case "esc", "backspace":
		b.back()
	}
	return b, nil
}

func formatEntry(entry ubundle.ObjectEntry) string {
	name := ""
	if entry.Name != "" {
		name = fmt.Sprintf(" %q", entry.Name)
	}
	return fmt.Sprintf("%6d  %-14s%s (%d bytes)", entry.PathID, entry.Class, name, entry.ByteSize)
}

func cursorMark(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}

func (b *ObjectBrowser) View() string {
	sb := strings.Builder{}
	sb.WriteString("PREFAB BUNDLER\n\n")
	sb.WriteString("Bundle: " + b.path + "\n\n")

	if b.history.IsEmpty() {
		for i, entry := range b.entries {
			sb.WriteString(cursorMark(i == b.cursor) + formatEntry(entry) + "\n")
		}
		sb.WriteString("\nup/down: move  enter: open  q: quit\n")
		return sb.String()
	}

	entry, _ := b.Selected()
	sb.WriteString(formatEntry(entry) + "\n\n")
	fields, err := json.MarshalIndent(entry.Object, "", "  ")
	if err != nil {
		fields = []byte(err.Error())
	}
	sb.Write(fields)
	sb.WriteString("\n\nReferences:\n")
	for i, r := range b.references() {
		pptr := r.PPtr()
		sb.WriteString(fmt.Sprintf("%s{file_id: %d, path_id: %d}\n", cursorMark(i == b.cursor), pptr.FileID, pptr.PathID))
	}
	if b.status != "" {
		sb.WriteString("\n" + b.status + "\n")
	}
	sb.WriteString("\nup/down: move  enter: follow  esc: back  q: quit\n")
	return sb.String()
}
