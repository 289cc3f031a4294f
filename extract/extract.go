// Package extract runs the CCLE growth-medium pipeline: it joins the chromatin
// proteomics table with the cell-line annotation sheet, canonicalizes the
// growth-medium text of every joined cell line, and prepares the flat exports.
package extract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/ccleprep/medium"
	"github.com/carbocation/ccleprep/proteomics"
	"github.com/carbocation/ccleprep/spreadsheet"
	"github.com/carbocation/ccleprep/table"
)

// Config holds every input the pipeline needs. Paths may be local, http(s)
// or gs://.
type Config struct {
	ProteomicsPath string
	Layout         proteomics.Layout
	ReadOptions    table.ReadOptions

	MetadataPath  string
	MetadataSheet string
	KeyColumn     string
	MediumColumn  string

	Media  *medium.Config
	Policy medium.Policy

	// Matrix requests the numeric Dataset needed by WriteOutputs and the
	// per-mark summary. Without it non-numeric proteomics columns and an
	// empty join are not errors.
	Matrix bool

	// Storage is required only when a path is on Google Storage.
	Storage *storage.Client
}

// DefaultConfig returns the settings of the 2019 CCLE release with the
// built-in media configuration. Paths are left empty.
func DefaultConfig() (*Config, error) {
	media, err := medium.DefaultConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Layout:        proteomics.Layouts["CCLE2019"],
		ReadOptions:   table.ReadOptions{Comma: ','},
		MetadataSheet: "Cell Line Annotations",
		KeyColumn:     "CCLE_ID",
		MediumColumn:  "Growth.Medium",
		Media:         media,
		Policy:        medium.PolicyPriority,
	}, nil
}

// CellLineMedium is the medium resolved for one joined cell line.
type CellLineMedium struct {
	CellLine string
	Raw      string
	Medium   string
	Mapped   bool
}

type Result struct {
	Joined *table.Table
	Stats  table.JoinStats

	// Assignments has one entry per distinct non-blank medium string, in
	// first-seen order.
	Assignments []medium.Assignment

	// Media is the deduplicated list of canonical media.
	Media []string

	CellLines []CellLineMedium

	// Dataset is nil unless Config.Matrix is set.
	Dataset *proteomics.Dataset
}

// LoadMetadata reads the annotation sheet restricted to the key and medium
// columns.
func LoadMetadata(ctx context.Context, cfg *Config) (*table.Table, error) {
	wb, err := spreadsheet.Open(ctx, cfg.MetadataPath, cfg.Storage)
	if err != nil {
		return nil, err
	}

	sheet, err := spreadsheet.ReadSheet(wb, cfg.MetadataSheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.MetadataPath, err)
	}

	sheet, err = sheet.Select(cfg.KeyColumn, cfg.MediumColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: sheet %q: %w", cfg.MetadataPath, cfg.MetadataSheet, err)
	}

	return sheet, nil
}

// Run executes the pipeline. Nothing is written; see Result.WriteOutputs.
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	if cfg.Media == nil {
		return nil, fmt.Errorf("no media configuration")
	}

	prot, err := proteomics.Load(ctx, cfg.ProteomicsPath, cfg.Storage, cfg.Layout, cfg.ReadOptions)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d cell lines with %d columns from %s\n", prot.Len(), len(prot.Columns), cfg.ProteomicsPath)

	meta, err := LoadMetadata(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d annotations from sheet %q of %s\n", meta.Len(), cfg.MetadataSheet, cfg.MetadataPath)

	joined, stats, err := table.InnerJoin(prot, meta, cfg.Layout.NameColumn, cfg.KeyColumn)
	if err != nil {
		return nil, err
	}
	log.Printf("Joined %d cell lines (%d proteomics lines without annotation, %d annotations without proteomics)\n",
		stats.JoinedRows, len(stats.UnmatchedLeft), len(stats.UnmatchedRight))
	if len(stats.UnmatchedLeft) > 0 {
		log.Printf("Proteomics lines without annotation: %s\n", strings.Join(stats.UnmatchedLeft, ", "))
	}

	res := &Result{
		Joined: joined,
		Stats:  stats,
	}

	unique, err := joined.Unique(cfg.MediumColumn)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(unique))
	for _, v := range unique {
		if strings.TrimSpace(v) == "" {
			continue
		}
		values = append(values, v)
	}
	log.Printf("Found %d distinct growth media\n", len(values))

	canon := medium.New(cfg.Media, cfg.Policy)
	res.Assignments, err = canon.CanonicalizeAll(values)
	if err != nil {
		return nil, err
	}
	for _, a := range medium.Unmapped(res.Assignments) {
		log.Printf("Warning: no medium family matches %q (cleaned: %q)\n", a.Raw, a.Cleaned)
	}
	res.Media = medium.Media(res.Assignments)

	byRaw := make(map[string]medium.Assignment, len(res.Assignments))
	for _, a := range res.Assignments {
		byRaw[a.Raw] = a
	}

	names, err := joined.Column(cfg.Layout.NameColumn)
	if err != nil {
		return nil, err
	}
	raws, err := joined.Column(cfg.MediumColumn)
	if err != nil {
		return nil, err
	}
	res.CellLines = make([]CellLineMedium, 0, len(names))
	for i, name := range names {
		clm := CellLineMedium{CellLine: name, Raw: raws[i]}
		if a, exists := byRaw[raws[i]]; exists {
			clm.Medium = a.Value()
			clm.Mapped = a.Mapped()
		}
		res.CellLines = append(res.CellLines, clm)
	}

	if !cfg.Matrix {
		return res, nil
	}

	res.Dataset, err = proteomics.NewDataset(joined, cfg.Layout, cfg.KeyColumn, cfg.MediumColumn)
	if err != nil {
		return nil, err
	}

	return res, nil
}
