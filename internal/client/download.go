package client

import (
	"path/filepath"

	"fyne.io/fyne/v2/storage"
	"github.com/pkg/errors"
)

// DirSaver writes downloads into Dir through Fyne's file storage, creating
// the directory if needed. It needs a running Fyne app for the file
// repository.
type DirSaver struct {
	Dir string
}

var _ Saver = DirSaver{}

func (s DirSaver) Save(name string, data []byte) (string, error) {
	dir := storage.NewFileURI(s.Dir)
	exists, err := storage.Exists(dir)
	if err != nil {
		return "", errors.Wrap(err, "check download dir")
	}
	if !exists {
		if err := storage.CreateListable(dir); err != nil {
			return "", errors.Wrap(err, "create download dir")
		}
	}

	uri, err := storage.Child(dir, filepath.Base(name))
	if err != nil {
		return "", errors.Wrap(err, "download path")
	}
	w, err := storage.Writer(uri)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", uri.Path())
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", errors.Wrapf(err, "write %s", uri.Path())
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", uri.Path())
	}
	return uri.Path(), nil
}
