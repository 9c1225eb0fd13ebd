package choice

import (
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Lister lists the regular files of a directory whose names end with suffix.
// Names are returned without the directory part, suffix included.
type Lister interface {
	ListFiles(dir, suffix string) ([]string, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(dir, suffix string) ([]string, error)

// ListFiles implements Lister.
func (f ListerFunc) ListFiles(dir, suffix string) ([]string, error) {
	return f(dir, suffix)
}

// FSLister lists files of a billy.Filesystem. Only the top level of the
// directory is scanned.
type FSLister struct {
	FS billy.Filesystem
}

// NewOSLister returns a Lister over the host filesystem. Relative
// directories resolve against the working directory.
func NewOSLister() *FSLister {
	return &FSLister{FS: osfs.Default}
}

// ListFiles implements Lister.
func (l *FSLister) ListFiles(dir, suffix string) ([]string, error) {
	infos, err := l.FS.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if strings.HasSuffix(info.Name(), suffix) {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
