package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"citematch/internal/citation"
	"citematch/internal/lawdb"
	"citematch/internal/parser"
)

func newExtractCmd() *cobra.Command {
	var (
		tripletsPath string
		titlesPath   string
	)

	cmd := &cobra.Command{
		Use:   "extract <document>",
		Short: "Scan a document for law citations",
		Long: `Extract parses a document (txt, md, html, pdf or docx), scans its text
for law citations and resolves each against the registry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			p, err := parser.ForFile(path)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := p.Extract(f, filepath.Base(path))
			if err != nil {
				return fmt.Errorf("parse document: %w", err)
			}

			registry, err := lawdb.Load(tripletsPath, titlesPath)
			if err != nil {
				return fmt.Errorf("load law registry: %w", err)
			}

			type found struct {
				Citation string `json:"citation"`
				Law      string `json:"law,omitempty"`
				Articles []int  `json:"articles,omitempty"`
			}
			var citations []found
			for _, cit := range citation.Scan(doc.Text()) {
				fc := found{Citation: cit}
				if abbrev, ok := citation.ExtractAbbreviation(cit); ok {
					if law, ok := registry.ResolveAbbrev(abbrev); ok {
						fc.Law = law
					}
				}
				fc.Articles = citation.ExtractArticles(cit).Sorted()
				citations = append(citations, fc)
			}

			return printJSON(map[string]any{
				"file":      filepath.Base(path),
				"title":     doc.Title,
				"citations": citations,
				"total":     len(citations),
			})
		},
	}

	cmd.Flags().StringVar(&tripletsPath, "triplets", "./registry/abbreviation_triplets.json", "law abbreviation triplets path")
	cmd.Flags().StringVar(&titlesPath, "titles", "./registry/titles_mapping.json", "law titles mapping path")
	return cmd
}
