package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/drucred/internal/domain"
)

// Paths are the files produced by WriteFiles.
type Paths struct {
	Markdown string
	CSV      string
}

// FileNames returns the report file names for a project slug.
func FileNames(dir, slug string) Paths {
	base := filepath.Join(dir, "drucred_"+slug)
	return Paths{Markdown: base + ".md", CSV: base + ".csv"}
}

// WriteFiles writes the markdown report and the CSV of project into dir,
// creating dir if needed.
func WriteFiles(dir string, project domain.Project, counts *domain.CreditCounts, topN int) (Paths, error) {
	if project.Slug == "" || strings.ContainsAny(project.Slug, `/\`) {
		return Paths{}, fmt.Errorf("invalid project slug %q", project.Slug)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	paths := FileNames(dir, project.Slug)

	var eg errgroup.Group
	eg.Go(func() error {
		return writeFile(paths.Markdown, func(w io.Writer) error {
			return WriteMarkdown(w, project.Title, counts, topN)
		})
	})
	eg.Go(func() error {
		return writeFile(paths.CSV, func(w io.Writer) error {
			return WriteCSV(w, counts)
		})
	})
	if err := eg.Wait(); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

func writeFile(path string, render func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := render(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
