package main

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aabizri/lsysviz"
	"github.com/aabizri/lsysviz/interchange"
	"github.com/aabizri/lsysviz/interchange/lsif"
	"github.com/aabizri/lsysviz/interchange/lsys"
	"github.com/michaelmacinnis/adapted"
	"github.com/pkg/errors"
)

var errUnknownExtension = errors.New("unknown file extension")

// load decodes every definition of path, by extension.
func load(path string) ([]interchange.Definition, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".lsys":
		format, err := lsys.Open(path)
		if err != nil {
			return nil, err
		}
		def, err := format.Import()
		if err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
		return []interchange.Definition{def}, nil
	case ".yml", ".yaml":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "could not open %s", path)
		}
		defer f.Close()
		return loadStream(f, path)
	default:
		return nil, errors.Wrapf(errUnknownExtension, "%s", path)
	}
}

func loadStream(r io.Reader, path string) ([]interchange.Definition, error) {
	var defs []interchange.Definition

	dec := lsif.NewDecoder(r)
	for i := 0; ; i++ {
		format, err := dec.Decode()
		if err == io.EOF {
			return defs, nil
		} else if err != nil {
			return nil, errors.Wrapf(err, "%s: document %d", path, i)
		}

		def, err := format.Import()
		if err != nil {
			return nil, errors.Wrapf(err, "%s: document %d", path, i)
		}
		if def.Name == "" {
			def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if i > 0 {
				def.Name += "-" + strconv.Itoa(i)
			}
		}
		defs = append(defs, def)
	}
}

// loadAll loads every file in order, keeping the definitions whose name
// matches the glob, if any.
func loadAll(paths []string, only string) ([]interchange.Definition, error) {
	var defs []interchange.Definition
	for _, path := range paths {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		for _, def := range loaded {
			if only != "" {
				ok, err := adapted.Match(only, def.Name)
				if err != nil {
					return nil, errors.Wrapf(err, "invalid pattern %q", only)
				}
				if !ok {
					lsysviz.Logger().Debug("skipping definition", "name", def.Name, "only", only)
					continue
				}
			}
			defs = append(defs, def)
		}
	}
	return defs, nil
}
