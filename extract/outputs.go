package extract

import (
	"context"
	"errors"
	"io"
	"log"

	"cloud.google.com/go/storage"
	"github.com/carbocation/ccleprep"
	"github.com/carbocation/ccleprep/medium"
	"github.com/carbocation/ccleprep/proteomics"
	"github.com/carbocation/pfx"
)

var ErrNoMatrix = errors.New("no intensity matrix: run with Config.Matrix set")

// Output file names written by WriteOutputs.
const (
	NamesFile       = "ccle_names.txt"
	MarksFile       = "h3marks.txt"
	ValuesFile      = "h3_relval.txt"
	AssignmentsFile = "media_assignments.csv"
)

// WriteOutputs writes the cell-line names, the mark names, the intensity
// matrix and the medium assignment report into dir, which may be a gs://
// prefix. With shortNames the tissue suffix is removed from the names.
func (r *Result) WriteOutputs(ctx context.Context, dir string, client *storage.Client, shortNames bool) error {
	if r.Dataset == nil {
		return ErrNoMatrix
	}

	names := r.Dataset.Names
	if shortNames {
		names = proteomics.ShortNames(names)
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{NamesFile, func(w io.Writer) error { return proteomics.WriteLines(w, names) }},
		{MarksFile, func(w io.Writer) error { return proteomics.WriteLines(w, r.Dataset.Marks) }},
		{ValuesFile, func(w io.Writer) error { return proteomics.WriteMatrix(w, r.Dataset.Values) }},
		{AssignmentsFile, func(w io.Writer) error { return medium.WriteReport(w, r.Assignments) }},
	}

	for _, out := range outputs {
		path := ccleprep.JoinPath(dir, out.name)
		if err := writeFile(ctx, path, client, out.write); err != nil {
			return err
		}
		log.Println("Wrote", path)
	}

	return nil
}

func writeFile(ctx context.Context, path string, client *storage.Client, write func(io.Writer) error) error {
	w, err := ccleprep.CreateWriter(ctx, path, client)
	if err != nil {
		return err
	}

	if err := write(w); err != nil {
		w.Close()
		return pfx.Err(err)
	}

	// Closing a storage writer is what commits the object.
	if err := w.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}
