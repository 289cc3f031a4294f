// ccle-media joins the CCLE global chromatin profiling table with the cell
// line annotations, canonicalizes each line's growth medium and, on request,
// exports the name/mark/value files used by the metabolic model.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/carbocation/ccleprep"
	"github.com/carbocation/ccleprep/bqexport"
	_ "github.com/carbocation/ccleprep/compileinfoprint"
	"github.com/carbocation/ccleprep/extract"
	"github.com/carbocation/ccleprep/medium"
	"github.com/carbocation/ccleprep/proteomics"
	"github.com/carbocation/ccleprep/store"
)

var (
	BufferSize = 4096 * 8
	STDOUT     = bufio.NewWriterSize(os.Stdout, BufferSize)
)

func main() {
	defer STDOUT.Flush()

	cfg, err := extract.DefaultConfig()
	if err != nil {
		log.Fatalln(err)
	}

	var layout, delim, mediaConfig, policy, outdir, sqlitePath, bqTable string
	var shortNames, summary bool

	flag.StringVar(&cfg.ProteomicsPath, "proteomics", "", "Path to the global chromatin profiling table (e.g., CCLE_GCP.csv). May be gzip/zip/xz/bzip2 compressed, an http(s) URL, or a gs:// path.")
	flag.StringVar(&layout, "layout", "CCLE2019", fmt.Sprintf("Column layout of the proteomics table. Options: %s", proteomics.LayoutNames()))
	flag.StringVar(&delim, "delim", ",", "Field delimiter of the proteomics table. Use 'tab' for tabs or 'auto' to sniff it.")
	flag.StringVar(&cfg.ReadOptions.Encoding, "encoding", "", "Text encoding of the proteomics table (e.g., latin1). Default is UTF-8.")
	flag.StringVar(&cfg.MetadataPath, "metadata", "", "Path to the cell line annotation workbook (.xlsx or .xls, e.g., summary.xlsx)")
	flag.StringVar(&cfg.MetadataSheet, "sheet", cfg.MetadataSheet, "Annotation sheet name")
	flag.StringVar(&cfg.KeyColumn, "key", cfg.KeyColumn, "Annotation column holding the cell line name")
	flag.StringVar(&cfg.MediumColumn, "medium-column", cfg.MediumColumn, "Annotation column holding the growth medium")
	flag.StringVar(&mediaConfig, "media-config", "", "Optional TOML file with extra noise strings and medium families, merged over the built-in ones")
	flag.StringVar(&policy, "policy", "priority", "What to do when several medium families match: 'priority' takes the first, 'strict' fails")
	flag.StringVar(&outdir, "outdir", "", "If set, write ccle_names.txt, h3marks.txt, h3_relval.txt and media_assignments.csv into this directory (local or gs://)")
	flag.BoolVar(&shortNames, "short-names", false, "Strip the tissue suffix from cell line names in ccle_names.txt (22RV1_PROSTATE becomes 22RV1)?")
	flag.BoolVar(&summary, "summary", false, "Print per-mark summary statistics?")
	flag.StringVar(&sqlitePath, "sqlite", "", "If set, save the assignments and per-cell-line media into this SQLite file")
	flag.StringVar(&bqTable, "bq-table", "", "If set, stream new assignments into this BigQuery table (project.dataset.table)")
	flag.Parse()

	if cfg.ProteomicsPath == "" || cfg.MetadataPath == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide -proteomics and -metadata")
	}

	if cfg.Layout, err = proteomics.LookupLayout(layout); err != nil {
		log.Fatalln(err)
	}
	if cfg.ReadOptions.Comma, err = parseDelimiter(delim); err != nil {
		log.Fatalln(err)
	}
	if cfg.Policy, err = medium.ParsePolicy(policy); err != nil {
		log.Fatalln(err)
	}
	if cfg.Media, err = medium.LoadConfig(mediaConfig); err != nil {
		log.Fatalln(err)
	}

	// The numeric matrix is only needed for the flat files and the summary.
	cfg.Matrix = outdir != "" || summary

	ctx := context.Background()

	if ccleprep.NeedsStorageClient(cfg.ProteomicsPath, cfg.MetadataPath, outdir) {
		cfg.Storage, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer cfg.Storage.Close()
	}

	res, err := extract.Run(ctx, cfg)
	if err != nil {
		log.Fatalln(err)
	}

	if err := printResult(res); err != nil {
		log.Fatalln(err)
	}

	if summary {
		fmt.Fprintln(STDOUT, renderSummary(proteomics.Summarize(res.Dataset)))
	}

	if outdir != "" {
		if err := res.WriteOutputs(ctx, outdir, cfg.Storage, shortNames); err != nil {
			log.Fatalln(err)
		}
	}

	if sqlitePath != "" {
		if err := saveSQLite(ctx, sqlitePath, res); err != nil {
			log.Fatalln(err)
		}
	}

	if bqTable != "" {
		if err := uploadBigQuery(ctx, bqTable, res); err != nil {
			log.Fatalln(err)
		}
	}
}

// parseDelimiter maps the -delim flag to a rune. Zero means sniff.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "auto":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}

	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter %q: expected a single character, 'tab' or 'auto'", s)
	}

	return r[0], nil
}

func printResult(res *extract.Result) error {
	fmt.Fprintln(STDOUT, renderAssignments(res.Assignments))

	fmt.Fprintf(STDOUT, "\n%d canonical media:\n", len(res.Media))
	for _, m := range res.Media {
		fmt.Fprintf(STDOUT, "  %s\n", m)
	}

	if unmapped := medium.Unmapped(res.Assignments); len(unmapped) > 0 {
		fmt.Fprintf(STDOUT, "\n%d media matched no family:\n", len(unmapped))
		for _, a := range unmapped {
			fmt.Fprintf(STDOUT, "  %s\n", a.Raw)
		}
	}

	return STDOUT.Flush()
}

func saveSQLite(ctx context.Context, path string, res *extract.Result) error {
	db, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveAssignments(ctx, res.Assignments); err != nil {
		return err
	}
	if err := db.SaveCellLines(ctx, res.CellLines); err != nil {
		return err
	}

	log.Printf("Saved %d assignments and %d cell lines to %s\n", len(res.Assignments), len(res.CellLines), path)

	return nil
}

func uploadBigQuery(ctx context.Context, tableName string, res *extract.Result) error {
	ref, err := bqexport.ParseTableRef(tableName)
	if err != nil {
		return err
	}

	client, err := bigquery.NewClient(ctx, ref.Project)
	if err != nil {
		return err
	}
	defer client.Close()

	BQ := &bqexport.WrappedBigQuery{
		Context:  ctx,
		Client:   client,
		Project:  ref.Project,
		Database: ref.Dataset,
	}

	n, err := BQ.Upload(ref.Table, res.Assignments)
	if err != nil {
		return err
	}

	log.Printf("Streamed %d new assignments to %s\n", n, ref)

	return nil
}
