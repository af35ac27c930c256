package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gompdf/manuscript/internal/geometry"
)

type Config struct {
	// Project
	BookSize           string
	EstimatedPageCount int
	BookType           string
	ProjectName        string
	ProjectFile        string

	// Editing
	SettleDelay time.Duration
	Tolerance   float64

	// Typesetting
	FontFamily       string
	FontSize         float64
	LineHeight       float64
	ParagraphSpacing float64

	Debug bool
}

func Load() Config {
	cfg := Config{
		BookSize:           envOr("MANUSCRIPT_BOOK_SIZE", "6x9"),
		EstimatedPageCount: envInt("MANUSCRIPT_PAGE_ESTIMATE", 200),
		BookType:           envOr("MANUSCRIPT_BOOK_TYPE", "novel"),
		ProjectName:        envOr("MANUSCRIPT_PROJECT_NAME", "Untitled"),
		ProjectFile:        os.Getenv("MANUSCRIPT_PROJECT_FILE"),

		SettleDelay: envDuration("MANUSCRIPT_SETTLE_DELAY", 150*time.Millisecond),
		Tolerance:   envFloat("MANUSCRIPT_TOLERANCE", 2),

		FontFamily:       envOr("MANUSCRIPT_FONT_FAMILY", "Times"),
		FontSize:         envFloat("MANUSCRIPT_FONT_SIZE", 11),
		LineHeight:       envFloat("MANUSCRIPT_LINE_HEIGHT", 1.4),
		ParagraphSpacing: envFloat("MANUSCRIPT_PARAGRAPH_SPACING", 0),

		Debug: envBool("MANUSCRIPT_DEBUG", false),
	}

	if cfg.EstimatedPageCount <= 0 {
		cfg.EstimatedPageCount = 200
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 150 * time.Millisecond
	}
	if cfg.Tolerance < 0 {
		cfg.Tolerance = 2
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = 11
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = 1.4
	}
	if cfg.ParagraphSpacing < 0 {
		cfg.ParagraphSpacing = 0
	}

	return cfg
}

func (c Config) Validate() error {
	if _, err := geometry.Dimensions(c.BookSize); err != nil {
		return fmt.Errorf("MANUSCRIPT_BOOK_SIZE: %w (known: %v)", err, geometry.SizeKeys())
	}
	if c.EstimatedPageCount <= 0 {
		return fmt.Errorf("MANUSCRIPT_PAGE_ESTIMATE must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
