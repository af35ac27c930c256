package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gompdf/manuscript"
	"github.com/gompdf/manuscript/internal/config"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.BookSize, "size", cfg.BookSize, "Book trim size")
	flag.IntVar(&cfg.EstimatedPageCount, "pages", cfg.EstimatedPageCount, "Estimated page count of the finished book")
	flag.StringVar(&cfg.ProjectName, "name", cfg.ProjectName, "Project name")
	flag.Parse()
	if flag.NArg() > 0 {
		cfg.ProjectFile = flag.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	session := manuscript.New(
		manuscript.WithSettleDelay(cfg.SettleDelay),
		manuscript.WithTolerance(cfg.Tolerance),
		manuscript.WithFont(cfg.FontFamily, cfg.FontSize, cfg.LineHeight),
		manuscript.WithParagraphSpacing(cfg.ParagraphSpacing),
		manuscript.WithProjectFile(cfg.ProjectFile),
	)
	if _, err := session.InitializeProject(manuscript.ProjectSettings{
		BookSize:           cfg.BookSize,
		EstimatedPageCount: cfg.EstimatedPageCount,
		BookType:           cfg.BookType,
		ProjectName:        cfg.ProjectName,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
