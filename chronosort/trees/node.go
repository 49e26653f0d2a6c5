package trees

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Metadata holds the filesystem attributes the organizer cares about for a
// single node. It is read once per operation and never persisted.
type Metadata struct {
	Size        int64       `json:"size"`
	ModifiedAt  time.Time   `json:"modified_at"`
	NodeType    NodeType    `json:"node_type"`
	Permissions os.FileMode `json:"permissions"`
}

type NodeType int

const (
	Directory NodeType = iota
	File
)

func (n NodeType) String() string {
	switch n {
	case Directory:
		return "directory"
	case File:
		return "file"
	default:
		return "unknown"
	}
}

// NewMetadata builds Metadata from an os.FileInfo.
func NewMetadata(fileinfo os.FileInfo) Metadata {
	nodeType := File
	if fileinfo.IsDir() {
		nodeType = Directory
	}

	return Metadata{
		Size:        fileinfo.Size(),
		ModifiedAt:  fileinfo.ModTime(),
		NodeType:    nodeType,
		Permissions: fileinfo.Mode(),
	}
}

// FileNode represents a single regular file discovered during traversal.
type FileNode struct {
	Path      string   `json:"path"`
	Name      string   `json:"name"`
	Extension string   `json:"extension"`
	Metadata  Metadata `json:"metadata"`
}

// NewFileNode builds a FileNode for path from an already-read os.FileInfo.
func NewFileNode(path string, info os.FileInfo) *FileNode {
	return &FileNode{
		Path:      path,
		Name:      filepath.Base(path),
		Extension: strings.ToLower(filepath.Ext(path)),
		Metadata:  NewMetadata(info),
	}
}
