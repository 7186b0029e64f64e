// Package dbpath locates the record database on disk.
//
// The file ships next to the binary in packaged builds and at the repository
// root during development, so several layouts are probed in a fixed order.
package dbpath

import (
	"os"
	"path/filepath"
)

// RelPath is the database location relative to a layout root. It is also the
// value returned when no candidate exists.
var RelPath = filepath.Join("data", "db.sqlite")

// Candidates lists the probe order: one, two and three levels above exeDir,
// then cwd and its parent. An empty exeDir or cwd skips that group.
func Candidates(exeDir, cwd string) []string {
	out := make([]string, 0, 5)
	if exeDir != "" {
		up := exeDir
		for range 3 {
			up = filepath.Join(up, "..")
			out = append(out, filepath.Join(up, RelPath))
		}
	}
	if cwd != "" {
		out = append(out, filepath.Join(cwd, RelPath))
		out = append(out, filepath.Join(cwd, "..", RelPath))
	}
	return out
}

// First returns the first candidate that exists, or RelPath.
func First(candidates []string) string {
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return RelPath
}

// Resolve probes the layouts around the running executable and the working
// directory.
func Resolve() string {
	var exeDir, cwd string
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		cwd = wd
	}
	return First(Candidates(exeDir, cwd))
}

// Resolver returns Override when set and falls back to discovery.
type Resolver struct {
	Override string
}

func (r Resolver) Resolve() string {
	if r.Override != "" {
		return r.Override
	}
	return Resolve()
}
