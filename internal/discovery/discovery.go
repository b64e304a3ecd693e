// Package discovery finds the schema fragments a build is made of.
//
// Fragment order matters: it is the order of Query._service.sdl. Every
// Discovery reports fragments in a stable order.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Fragment is one schema file.
type Fragment struct {
	// Name identifies the fragment in error locations.
	Name string
	SDL  string
}

type Discovery interface {
	Fragments(ctx context.Context) ([]Fragment, error)
}

// Extensions lists the file extensions treated as schema files.
var Extensions = []string{".graphql", ".graphqls", ".gql"}

func isSchemaFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FileSystem reads fragments from paths in argument order. A directory
// contributes every schema file below it in lexical order.
type FileSystem struct {
	fsys  fs.FS
	paths []string
}

// NewFileSystem reads paths relative to the working directory. Absolute
// paths are accepted as well.
func NewFileSystem(paths ...string) *FileSystem {
	return &FileSystem{fsys: osFS{}, paths: paths}
}

// NewFS reads paths from fsys.
func NewFS(fsys fs.FS, paths ...string) *FileSystem {
	return &FileSystem{fsys: fsys, paths: paths}
}

func (d *FileSystem) Fragments(ctx context.Context) ([]Fragment, error) {
	var out []Fragment
	for _, root := range d.paths {
		info, err := fs.Stat(d.fsys, root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			f, err := d.read(root)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
			continue
		}
		err = fs.WalkDir(d.fsys, root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if entry.IsDir() || !isSchemaFile(entry.Name()) {
				return nil
			}
			f, err := d.read(path)
			if err != nil {
				return err
			}
			out = append(out, f)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", root, err)
		}
	}
	return out, nil
}

func (d *FileSystem) read(path string) (Fragment, error) {
	b, err := fs.ReadFile(d.fsys, path)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Name: path, SDL: string(b)}, nil
}

// osFS is os.DirFS without the root restriction, so absolute paths and paths
// with ".." keep working.
type osFS struct{}

func (osFS) Open(name string) (fs.File, error) { return os.Open(name) }

func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (osFS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

func (osFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// InMemory serves fixed fragments, in the order given.
type InMemory []Fragment

func (d InMemory) Fragments(ctx context.Context) ([]Fragment, error) {
	return append([]Fragment(nil), d...), nil
}
