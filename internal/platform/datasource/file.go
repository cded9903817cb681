package datasource

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads a bulk document from the local filesystem.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Load(_ context.Context) (*Dataset, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return Decode(data, FormatOf(s.Path))
}

func (s *FileSource) Describe() string {
	return "file " + s.Path
}
