package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"stock-app/services"
	"strings"

	"go.uber.org/zap"
)

// Importer is the intake operation a file is fed through.
type Importer interface {
	Import(ctx context.Context, actor services.Actor, filename string, rows []services.ImportRow) (*services.ImportResult, error)
}

// Processor imports bulk intake files and moves them to ProcessedDir once
// they are in the database.
type Processor struct {
	Importer     Importer
	Mailer       services.Mailer
	NotifyTo     []string
	ProcessedDir string
	Log          *zap.Logger
}

// ProcessPath imports a single file, or every supported file in a directory.
func (p *Processor) ProcessPath(ctx context.Context, actor services.Actor, path string) ([]*services.ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		res, err := p.ProcessFile(ctx, actor, path)
		if err != nil {
			return nil, err
		}
		return []*services.ImportResult{res}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", path, err)
	}
	var results []*services.ImportResult
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		res, err := p.ProcessFile(ctx, actor, filepath.Join(path, e.Name()))
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (p *Processor) ProcessFile(ctx context.Context, actor services.Actor, path string) (*services.ImportResult, error) {
	rows, err := p.parse(path)
	if err != nil {
		return nil, err
	}

	res, err := p.Importer.Import(ctx, actor, path, rows)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	if res.Skipped {
		return res, nil
	}

	if p.ProcessedDir != "" {
		if err := moveFile(path, p.ProcessedDir); err != nil {
			p.Log.Warn("imported file not moved", zap.String("file", path), zap.Error(err))
		}
	}
	p.notify(ctx, res)
	return res, nil
}

func (p *Processor) parse(path string) ([]services.ImportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(path, f)
}

func (p *Processor) notify(ctx context.Context, res *services.ImportResult) {
	if p.Mailer == nil || len(p.NotifyTo) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Intake file %s was imported with %d row(s).\n\n", res.Filename, res.Rows)
	for _, r := range res.Results {
		fmt.Fprintf(&b, "- item %d: +%d (total cost %s)", r.ItemID, r.Quantity, r.TotalCost.StringFixed(2))
		if r.IsNewItem {
			b.WriteString(" new item")
		}
		b.WriteString("\n")
	}

	subject := "Stock intake imported: " + res.Filename
	for _, to := range p.NotifyTo {
		if err := p.Mailer.Send(ctx, to, subject, b.String()); err != nil {
			p.Log.Warn("import notification not sent", zap.String("to", to), zap.Error(err))
		}
	}
}

// moveFile renames src into dir, falling back to copy and delete when the
// rename crosses devices.
func moveFile(src, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	in.Close()
	return os.Remove(src)
}
