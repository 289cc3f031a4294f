// trim-sheet reduces a model-output workbook sheet to its first rows, without
// the pandas duplicate columns and the unnamed spacer column, and prints it
// as TSV.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/ccleprep"
	_ "github.com/carbocation/ccleprep/compileinfoprint"
	"github.com/carbocation/ccleprep/spreadsheet"
	"github.com/carbocation/ccleprep/table"
	"github.com/carbocation/ccleprep/trim"
)

var (
	BufferSize = 4096 * 8
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

func main() {
	defer STDOUT.Flush()

	opts := trim.DefaultOptions()

	var filename, dropColumns, duplicates, outdir string
	var all bool

	flag.StringVar(&filename, "file", "", "Path to the .xlsx or .xls workbook (local, http(s) or gs://)")
	flag.StringVar(&opts.Sheet, "sheet", "", "Name of the sheet to trim (required unless -all)")
	flag.BoolVar(&all, "all", false, "Trim every sheet in the workbook?")
	flag.IntVar(&opts.MaxRows, "n", opts.MaxRows, "Number of data rows to keep")
	flag.StringVar(&dropColumns, "drop", strings.Join(opts.DropColumns, ","), "Comma-separated columns that must exist and are removed. Empty to remove none.")
	flag.StringVar(&duplicates, "duplicates", trim.DefaultDuplicatePattern, "Regular expression matching duplicate-suffixed column names to remove. Empty to keep them.")
	flag.StringVar(&outdir, "out", "", "If set, write one <sheet>.tsv per trimmed sheet (path characters in sheet names become '_') into this directory (local or gs://) instead of printing to STDOUT")
	flag.Parse()

	if filename == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide -file")
	}

	opts.DropColumns = splitList(dropColumns)
	opts.Duplicates = nil
	if duplicates != "" {
		var err error
		if opts.Duplicates, err = regexp.Compile(duplicates); err != nil {
			log.Fatalln(err)
		}
	}

	ctx := context.Background()

	var client *storage.Client
	if ccleprep.NeedsStorageClient(filename, outdir) {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
	}

	wb, err := spreadsheet.Open(ctx, filename, client)
	if err != nil {
		log.Fatalln(err)
	}

	var sheets []trim.Sheet
	if all {
		sheets, err = trim.TrimAll(wb, opts)
	} else {
		var t *table.Table
		t, err = trim.Trim(wb, opts)
		sheets = []trim.Sheet{{Name: opts.Sheet, Table: t}}
	}
	if err != nil {
		log.Fatalln(err)
	}

	names := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		names = append(names, sheet.Name)
	}
	fileNames := trim.FileNames(names, ".tsv")

	for i, sheet := range sheets {
		log.Printf("Sheet %q: kept %d columns and %d rows\n", sheet.Name, len(sheet.Table.Columns), sheet.Table.Len())

		if outdir == "" {
			if all {
				if _, err := STDOUT.WriteString("# " + sheet.Name + "\n"); err != nil {
					log.Fatalln(err)
				}
			}
			if err := table.WriteDelimited(STDOUT, sheet.Table, '\t', true); err != nil {
				log.Fatalln(err)
			}
			continue
		}

		if err := writeSheet(ctx, ccleprep.JoinPath(outdir, fileNames[i]), client, sheet.Table); err != nil {
			log.Fatalln(err)
		}
	}
}

func writeSheet(ctx context.Context, path string, client *storage.Client, t *table.Table) error {
	w, err := ccleprep.CreateWriter(ctx, path, client)
	if err != nil {
		return err
	}

	if err := table.WriteDelimited(w, t, '\t', true); err != nil {
		w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}

	log.Println("Wrote", path)

	return nil
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
