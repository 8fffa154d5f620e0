package handler

import (
	"io/fs"
	"net/http"
)

// staticFS hides directories from http.FileServer so paths without an
// index.html answer 404 instead of a listing.
type staticFS struct {
	fs http.FileSystem
}

func (s staticFS) Open(name string) (http.File, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := s.fs.Open(name + "/index.html")
		if err != nil {
			f.Close()
			return nil, fs.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}

// StaticHandler serves files under dir.
func StaticHandler(dir string) http.Handler {
	return http.FileServer(staticFS{fs: http.Dir(dir)})
}
