package indexer

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// treeEntry is one filesystem entry in the walked project tree. Children
// are populated only for directories that are not ignored, in
// lexicographic order with files and directories interleaved, the way the
// reports list them. Hidden entries are dropped entirely.
type treeEntry struct {
	name     string
	relPath  string
	isDir    bool
	ignored  bool
	children []*treeEntry
}

// walker performs the single filesystem pass of an indexing run. It
// builds the entry tree for the reports, accumulates the project
// statistics, and collects the Python files to analyze in deterministic
// order: the files of a directory first, then its subdirectories.
type walker struct {
	root    string
	ignore  *IgnoreSet
	stats   Stats
	pyFiles []string
}

func newWalker(root string, ignore *IgnoreSet) *walker {
	return &walker{root: root, ignore: ignore}
}

// walk runs the pass and returns the root entry. The root itself is not
// counted in the directory statistic.
func (w *walker) walk() *treeEntry {
	root := &treeEntry{name: filepath.Base(w.root), relPath: "", isDir: true}
	w.walkInto(w.root, "", root)
	return root
}

func (w *walker) walkInto(dir, rel string, entry *treeEntry) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("Warning: cannot list %s: %v", dir, err)
		return
	}

	// ReadDir returns entries sorted by name; hidden entries are dropped
	// before anything sees them.
	var kept []os.DirEntry
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		kept = append(kept, e)
	}

	children := make(map[string]*treeEntry, len(kept))

	// Files first: they precede subdirectory contents in analysis order.
	for _, e := range kept {
		if e.IsDir() {
			continue
		}
		children[e.Name()] = w.visitFile(dir, rel, e)
	}
	for _, e := range kept {
		if !e.IsDir() {
			continue
		}
		children[e.Name()] = w.visitDir(dir, rel, e)
	}

	for _, e := range kept {
		entry.children = append(entry.children, children[e.Name()])
	}
}

func (w *walker) visitFile(dir, rel string, e os.DirEntry) *treeEntry {
	child := &treeEntry{name: e.Name(), relPath: joinRel(rel, e.Name())}
	if w.ignore.Match(e.Name(), false) {
		child.ignored = true
		return child
	}

	w.stats.Files++
	w.countFile(filepath.Join(dir, e.Name()), e)
	if strings.HasSuffix(e.Name(), ".py") {
		w.pyFiles = append(w.pyFiles, child.relPath)
	}
	return child
}

func (w *walker) visitDir(dir, rel string, e os.DirEntry) *treeEntry {
	child := &treeEntry{name: e.Name(), relPath: joinRel(rel, e.Name()), isDir: true}
	if w.ignore.Match(e.Name(), true) {
		child.ignored = true
		return child
	}

	w.stats.Directories++
	w.walkInto(filepath.Join(dir, e.Name()), child.relPath, child)
	return child
}

// countFile adds a file's size and line count to the statistics.
// Unreadable files contribute nothing.
func (w *walker) countFile(path string, e os.DirEntry) {
	if info, err := e.Info(); err == nil {
		w.stats.Bytes += info.Size()
	}
	if lines, err := countLines(path); err == nil {
		w.stats.Lines += lines
	}
}

// countLines counts lines the way text tools do: newline-terminated
// lines plus a final unterminated one. An empty file has zero lines.
func countLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var lines int64
	var last byte
	seen := false
	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			seen = true
			lines += int64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if seen && last != '\n' {
		lines++
	}
	return lines, nil
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return rel + "/" + name
}
