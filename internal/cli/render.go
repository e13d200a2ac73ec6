package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruffinoni/etch"
	"github.com/cruffinoni/etch/internal/config"
	"github.com/cruffinoni/etch/internal/datafile"
	"github.com/cruffinoni/etch/internal/fswalk"
	"github.com/cruffinoni/etch/internal/report"
)

func writeReports(cfg config.Config, summary report.Summary, files []report.FileItem) error {
	if cfg.ReportJSON != "" {
		if err := report.WriteJSON(cfg.ReportJSON, report.NewJSONReport(summary, files)); err != nil {
			return err
		}
	}
	if cfg.ReportCSV != "" {
		if err := report.WriteCSV(cfg.ReportCSV, files); err != nil {
			return err
		}
	}
	return nil
}

func runRender(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := fswalk.Discover(cfg.In, cfg.Glob)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no template files matched %q under %q", cfg.Glob, cfg.In)
	}

	var (
		rendered      int
		checked       int
		noData        int
		compileFailed int
		renderFailed  int

		fileItems = make([]report.FileItem, 0, len(files))

		stopErr  error
		stopCode = ExitCodeSuccess
	)

	for _, f := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		raw, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return fmt.Errorf("read %q: %w", f.AbsPath, err)
		}

		item := report.FileItem{
			File: f.RelPath,
		}

		tmpl := etch.New(string(raw), &etch.Options{Name: f.RelPath})
		if _, err := tmpl.Compile(); err != nil {
			compileFailed++
			item.Status = report.StatusCompileError
			item.Failure = report.ToFailureItem(err)
			fileItems = append(fileItems, item)
			slog.Warn("compile failed", "file", f.RelPath, "error", err)
			if cfg.Strict {
				stopErr = fmt.Errorf("compile failed on %s: %w", f.RelPath, err)
				stopCode = ExitCodeCompileFailed
				break
			}
			continue
		}

		if cfg.Check {
			checked++
			item.Status = report.StatusChecked
			fileItems = append(fileItems, item)
			continue
		}

		var data map[string]any
		dataPath, haveData := datafile.Find(cfg.DataRoot, f.RelPath)
		if haveData {
			item.DataPath = dataPath
			if data, err = datafile.Load(dataPath); err != nil {
				renderFailed++
				item.Status = report.StatusRenderError
				item.Failure = report.ToFailureItem(err)
				fileItems = append(fileItems, item)
				slog.Warn("data load failed", "file", f.RelPath, "error", err)
				if cfg.Strict {
					stopErr = fmt.Errorf("data load failed on %s: %w", f.RelPath, err)
					stopCode = ExitCodeRenderFailed
					break
				}
				continue
			}
		}

		output, err := tmpl.Render(ctx, data)
		if err != nil {
			renderFailed++
			item.Status = report.StatusRenderError
			item.Failure = report.ToFailureItem(err)
			fileItems = append(fileItems, item)
			slog.Warn("render failed", "file", f.RelPath, "error", err)
			if cfg.Strict {
				stopErr = fmt.Errorf("render failed on %s: %w", f.RelPath, err)
				stopCode = ExitCodeRenderFailed
				break
			}
			continue
		}

		outPath := fswalk.OutputPath(cfg.Out, f.RelPath, cfg.Ext)
		if err := fswalk.EnsureParentDir(outPath); err != nil {
			return fmt.Errorf("prepare output path %q: %w", outPath, err)
		}
		if err := os.WriteFile(outPath, []byte(output), 0o644); err != nil {
			return fmt.Errorf("write rendered file %q: %w", outPath, err)
		}
		item.Output = outPath

		rendered++
		if haveData {
			item.Status = report.StatusRendered
		} else {
			noData++
			item.Status = report.StatusRenderedNoData
		}
		fileItems = append(fileItems, item)
	}

	slog.Info(
		"render summary",
		"discovered", len(files),
		"rendered", rendered,
		"checked", checked,
		"compile_failed", compileFailed,
		"render_failed", renderFailed,
		"no_data", noData,
		"input", filepath.Clean(cfg.In),
		"output", cfg.Out,
	)

	summary := report.Summary{
		Discovered:    len(files),
		Rendered:      rendered,
		Checked:       checked,
		NoData:        noData,
		CompileFailed: compileFailed,
		RenderFailed:  renderFailed,
	}

	if err := writeReports(cfg, summary, fileItems); err != nil {
		return fmt.Errorf("write report artifacts: %w", err)
	}
	if cfg.ReportJSON != "" || cfg.ReportCSV != "" {
		slog.Info("reports written", "json", cfg.ReportJSON, "csv", cfg.ReportCSV)
	}

	if stopErr != nil {
		return newExitError(stopCode, stopErr)
	}
	if compileFailed > 0 {
		return newExitError(ExitCodeCompileFailed, fmt.Errorf("run finished with %d templates failing to compile", compileFailed))
	}
	if renderFailed > 0 {
		return newExitError(ExitCodeRenderFailed, fmt.Errorf("run finished with %d templates failing to render", renderFailed))
	}

	return nil
}
