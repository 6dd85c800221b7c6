// Package discovery recursively locates BAG containers under a URI,
// adapted from the teacher's GSF file trawler: the same TileDB VFS-backed
// recursive walk, generalised to match BAG containers (which, backed by
// TileDB, are directories rather than single files) instead of single *.gsf
// files.
package discovery

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// trawl recursively matches pattern against both files and directories
// under uri, since a BAG container is itself a directory (a TileDB group).
func trawl(vfs *tiledb.VFS, pattern string, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, err
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return items, err
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		match, err := filepath.Match(pattern, filepath.Base(dir))
		if err != nil {
			return items, err
		}
		if match {
			items = append(items, dir)
			continue
		}
		items, err = trawl(vfs, pattern, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// FindBags recursively searches for *.bag containers under uri. configURI,
// when non-empty, points at a TileDB config file controlling access to
// object-store backed URIs (e.g. S3 credentials/region).
func FindBags(uri, configURI string) ([]string, error) {
	var (
		config *tiledb.Config
		err    error
	)

	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, err
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, err
	}
	defer vfs.Free()

	return trawl(vfs, "*.bag", uri, make([]string, 0))
}
