package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gompdf/manuscript"
	"github.com/gompdf/manuscript/internal/config"
)

func main() {
	cfg := config.Load()

	var (
		bookSize   string
		pages      int
		outputFile string
		previewDir string
		project    string
		verbose    bool
	)

	flag.StringVar(&bookSize, "size", cfg.BookSize, "Book trim size ("+strings.Join(manuscript.BookSizes(), ", ")+")")
	flag.IntVar(&pages, "pages", cfg.EstimatedPageCount, "Estimated page count of the finished book")
	flag.StringVar(&outputFile, "output", "", "Output PDF file path")
	flag.StringVar(&previewDir, "preview", "", "Directory for PNG page previews")
	flag.StringVar(&project, "project", cfg.ProjectFile, "Project file to restore and update")
	flag.BoolVar(&verbose, "verbose", cfg.Debug, "Enable verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] chapter-file...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg.BookSize = bookSize
	cfg.EstimatedPageCount = pages
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if flag.NArg() == 0 && project == "" {
		fmt.Println("Error: at least one chapter file is required")
		flag.Usage()
		os.Exit(1)
	}

	session := manuscript.New(
		manuscript.WithSettleDelay(cfg.SettleDelay),
		manuscript.WithTolerance(cfg.Tolerance),
		manuscript.WithFont(cfg.FontFamily, cfg.FontSize, cfg.LineHeight),
		manuscript.WithParagraphSpacing(cfg.ParagraphSpacing),
		manuscript.WithProjectFile(project),
		manuscript.WithDebug(verbose),
	)
	if _, err := session.InitializeProject(manuscript.ProjectSettings{
		BookSize:           cfg.BookSize,
		EstimatedPageCount: cfg.EstimatedPageCount,
		BookType:           cfg.BookType,
		ProjectName:        cfg.ProjectName,
	}); err != nil {
		fmt.Printf("Error initializing project: %v\n", err)
		os.Exit(1)
	}

	for i, path := range flag.Args() {
		id := chapterID(path)
		if i == 0 && len(session.Chapters()) == 1 && session.Chapters()[0].Content == "" {
			// the first file replaces the empty default chapter
			id = session.Active().ID
		}
		if err := session.ImportChapter(id, path); err != nil {
			fmt.Printf("Error importing %s: %v\n", path, err)
			os.Exit(1)
		}
		if verbose {
			fmt.Printf("Imported %s as %s\n", path, id)
		}
	}

	chapters := session.Chapters()
	geom := session.Geometry()
	fmt.Printf("%s, %.0fx%.0f pt, gutter %.0f pt\n", geom.Size.Name, geom.Size.Width, geom.Size.Height, geom.Margins.Gutter)

	for _, ch := range chapters {
		if err := session.SwitchChapter(ch.ID); err != nil {
			fmt.Printf("Error loading %s: %v\n", ch.ID, err)
			os.Exit(1)
		}
		c := session.GetCounts()
		fmt.Printf("%-24s %6d words %4d pages\n", ch.ID, c.WordCount, c.PageCount)

		if outputFile != "" {
			path := outputPath(outputFile, ch.ID, len(chapters))
			if err := session.ExportPDFFile(path); err != nil {
				fmt.Printf("Error exporting %s: %v\n", ch.ID, err)
				os.Exit(1)
			}
			if verbose {
				fmt.Printf("Wrote %s\n", path)
			}
		}
		if previewDir != "" {
			dir := previewDir
			if len(chapters) > 1 {
				dir = filepath.Join(previewDir, ch.ID)
			}
			written, err := session.ExportPreview(dir)
			if err != nil {
				fmt.Printf("Error rendering previews for %s: %v\n", ch.ID, err)
				os.Exit(1)
			}
			if verbose {
				fmt.Printf("Wrote %d previews to %s\n", len(written), dir)
			}
		}
	}

	if err := session.LastSaveError(); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
}

func chapterID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outputPath names one PDF per chapter when there is more than one
func outputPath(output, id string, chapters int) string {
	if chapters <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	return output[:len(output)-len(ext)] + "-" + id + ext
}
