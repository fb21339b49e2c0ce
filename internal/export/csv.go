// Package export persists the route, leg and step tables to flat files.
package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/jwulff/commutes/internal/tables"
)

// File names written by CSV.
const (
	RoutesFile = "routes.csv"
	LegsFile   = "legs.csv"
	StepsFile  = "steps.csv"
)

// FileMode is the permission of every written file.
const FileMode os.FileMode = 0o644

// createTemp and rename are swapped in tests to inject failures.
var (
	createTemp = os.CreateTemp
	rename     = os.Rename
)

type table struct {
	name   string
	header []string
	rows   [][]string
}

// CSV writes routes.csv, legs.csv and steps.csv into Dir. The three files
// are replaced together: if any of them cannot be written, none of the
// existing files are touched.
type CSV struct {
	Dir string
}

// Name implements Sink.
func (c CSV) Name() string { return "csv" }

// Save implements Sink.
func (c CSV) Save(_ context.Context, res tables.Result) error {
	return WriteCSV(c.Dir, res)
}

// WriteCSV writes the three tables into dir.
func WriteCSV(dir string, res tables.Result) error {
	all := []table{
		{name: RoutesFile, header: tables.RouteHeader(), rows: routeRows(res.Routes)},
		{name: LegsFile, header: tables.LegHeader(), rows: legRows(res.Legs)},
		{name: StepsFile, header: tables.StepHeader(), rows: stepRows(res.Steps)},
	}

	temps := make([]string, len(all))
	var err error
	for i, t := range all {
		path, werr := writeTemp(dir, t)
		if werr != nil {
			err = multierr.Append(err, errors.Wrapf(werr, "write %s", t.name))
			continue
		}
		temps[i] = path
	}

	if err != nil {
		for _, p := range temps {
			if p != "" {
				os.Remove(p)
			}
		}
		return err
	}

	return replace(dir, all, temps)
}

// swap records one target moved into place and the backup of what it
// replaced, if anything.
type swap struct {
	target string
	backup string
	placed bool
}

// replace renames the temps over their targets. Existing targets are moved
// to a backup first; if any step fails the swaps done so far are undone, so
// the directory holds either all new tables or all previous ones.
func replace(dir string, all []table, temps []string) error {
	var done []swap
	undo := func() {
		for i := len(done) - 1; i >= 0; i-- {
			s := done[i]
			if s.placed {
				os.Remove(s.target)
			}
			if s.backup != "" {
				rename(s.backup, s.target)
			}
		}
		for _, p := range temps {
			os.Remove(p)
		}
	}

	for i, t := range all {
		s := swap{target: filepath.Join(dir, t.name)}
		info, err := os.Lstat(s.target)
		switch {
		case err == nil && info.IsDir():
			undo()
			return errors.Errorf("replace %s: target is a directory", t.name)
		case err == nil:
			s.backup = filepath.Join(dir, "."+t.name+".bak")
			if err := rename(s.target, s.backup); err != nil {
				undo()
				return errors.Wrapf(err, "back up %s", t.name)
			}
		case !os.IsNotExist(err):
			undo()
			return errors.Wrapf(err, "replace %s", t.name)
		}
		done = append(done, s)

		if err := rename(temps[i], s.target); err != nil {
			undo()
			return errors.Wrapf(err, "replace %s", t.name)
		}
		done[len(done)-1].placed = true
	}

	for _, s := range done {
		if s.backup != "" {
			os.Remove(s.backup)
		}
	}
	return nil
}

func writeTemp(dir string, t table) (string, error) {
	f, err := createTemp(dir, "."+t.name+"-*")
	if err != nil {
		return "", err
	}
	path := f.Name()

	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := w.WriteAll(t.rows); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Chmod(FileMode); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func routeRows(routes []tables.Route) [][]string {
	rows := make([][]string, len(routes))
	for i, r := range routes {
		rows[i] = r.Row()
	}
	return rows
}

func legRows(legs []tables.Leg) [][]string {
	rows := make([][]string, len(legs))
	for i, l := range legs {
		rows[i] = l.Row()
	}
	return rows
}

func stepRows(steps []tables.Step) [][]string {
	rows := make([][]string, len(steps))
	for i, s := range steps {
		rows[i] = s.Row()
	}
	return rows
}
