package output

import (
	"path"

	"github.com/disiqueira/gotree/v3"
)

// VisualFileTree renders slash separated library paths as a tree.
type VisualFileTree struct {
	tree gotree.Tree
	dirs map[string]gotree.Tree
}

func NewVisualFileTree(rootLabel string) VisualFileTree {
	return VisualFileTree{tree: gotree.New(rootLabel), dirs: make(map[string]gotree.Tree)}
}

func (t VisualFileTree) getDir(dirPath string) (dir gotree.Tree) {
	if dirPath == "." || dirPath == "" {
		return t.tree
	}
	dir = t.dirs[dirPath]
	if dir == nil {
		parentDir := t.getDir(path.Dir(dirPath))
		dir = parentDir.Add(path.Base(dirPath))
		t.dirs[dirPath] = dir
	}
	return
}

func (t VisualFileTree) InsertPath(slashedPath string, nodePrefix string) {
	dir := t.getDir(path.Dir(slashedPath))
	dir.Add(nodePrefix + path.Base(slashedPath))
}

func (t VisualFileTree) Render() string {
	return t.tree.Print()
}
