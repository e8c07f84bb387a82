package generate

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/apigen/internal/apimodel"
	"git.home.luguber.info/inful/apigen/internal/config"
	"git.home.luguber.info/inful/apigen/internal/descopt"
	"git.home.luguber.info/inful/apigen/internal/entries"
	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
	"git.home.luguber.info/inful/apigen/internal/gitmeta"
	"git.home.luguber.info/inful/apigen/internal/logfields"
	"git.home.luguber.info/inful/apigen/internal/metrics"
	"git.home.luguber.info/inful/apigen/internal/render"
	"git.home.luguber.info/inful/apigen/internal/xref"
)

// pageJob is one page ready to be written, with the identity needed for the
// incremental skip check. The hash covers the complete composed page so
// that member docstring changes invalidate parent pages too.
type pageJob struct {
	page       *render.Page
	dir        string
	objectName string
	docHash    string
}

// Service implements Generator.
type Service struct {
	recorder metrics.Recorder
}

func NewService() *Service {
	return &Service{recorder: metrics.NoopRecorder{}}
}

// SetRecorder injects a metrics recorder. Returns the service for chaining.
func (s *Service) SetRecorder(r metrics.Recorder) *Service {
	if r == nil {
		s.recorder = metrics.NoopRecorder{}
		return s
	}
	s.recorder = r
	return s
}

// Run executes a complete generation run: load inventories, expand entries,
// compose pages, and atomically promote the output directory.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	cfg := req.Config
	result := &Result{StartTime: time.Now(), Status: StatusFailed}

	finish := func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		s.recorder.ObserveGenerationDuration(result.Duration)
	}

	registry := descopt.NewRegistry()
	for _, rule := range cfg.Options {
		registry.AddOverlay(descopt.Overlay{Pattern: rule.Pattern, Options: rule.Options})
	}

	var store *xref.SQLiteStore
	if cfg.Output.StateDB != "" {
		var err error
		store, err = xref.NewSQLiteStore(cfg.Output.StateDB)
		if err != nil {
			finish()
			return result, err
		}
		defer func() { _ = store.Close() }()
	}

	xrefs := xref.NewMap()
	var jobs []pageJob
	for i := range cfg.Modules {
		if ctx.Err() != nil {
			result.Status = StatusCancelled
			finish()
			return result, ctx.Err()
		}
		moduleJobs, err := s.runModule(cfg, &cfg.Modules[i], registry, xrefs, result)
		if err != nil {
			finish()
			return result, err
		}
		jobs = append(jobs, moduleJobs...)
		result.Modules++
	}

	writer := render.NewWriter(cfg.Output.Directory)
	if err := writer.Begin(!cfg.Output.Clean); err != nil {
		finish()
		return result, err
	}

	previewer := render.NewPreviewer()
	if req.Options.Preview {
		for _, job := range jobs {
			previewer.AddTarget(job.page)
		}
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			writer.Abort()
			result.Status = StatusCancelled
			finish()
			return result, ctx.Err()
		}

		if store != nil && !req.Options.Preview {
			unchanged, err := store.Unchanged(ctx, job.objectName, job.docHash)
			if err == nil && unchanged && writer.CopyUnchanged(job.dir, job.page.Name) {
				result.PagesSkipped++
				s.recorder.IncPageResult(metrics.ResultSkipped)
				continue
			}
		}

		if err := s.writePage(ctx, writer, previewer, store, job, req.Options.Preview); err != nil {
			s.recorder.IncPageResult(metrics.ResultFailed)
			writer.Abort()
			finish()
			return result, err
		}
		result.Pages++
		s.recorder.IncPageResult(metrics.ResultSuccess)
	}

	if req.Options.DryRun {
		writer.Abort()
	} else if err := writer.Finalize(); err != nil {
		finish()
		return result, err
	}

	result.Status = StatusSuccess
	finish()
	slog.Info("Generation completed",
		"modules", result.Modules,
		"pages", result.Pages,
		"skipped", result.PagesSkipped,
		"warnings", result.Warnings,
		"duration", result.Duration)
	return result, nil
}

func (s *Service) writePage(ctx context.Context, writer *render.Writer, previewer *render.Previewer, store *xref.SQLiteStore, job pageJob, preview bool) error {
	if err := writer.WritePage(job.page, job.dir); err != nil {
		return err
	}
	if preview {
		raw, err := job.page.Markdown()
		if err != nil {
			return apierrors.RenderError(job.page.Name, err)
		}
		html, err := previewer.Render(raw)
		if err != nil {
			return apierrors.RenderError(job.page.Name, err)
		}
		if err := writer.WriteHTML(job.dir, job.page.Name, html); err != nil {
			return err
		}
	}
	if store != nil {
		rec := xref.Record{
			ObjectName: job.objectName,
			Docname:    job.page.Name,
			DocHash:    job.docHash,
			UpdatedAt:  time.Now(),
		}
		if err := store.Put(ctx, rec); err != nil {
			slog.Warn("Failed to persist cross-reference record",
				"object", job.objectName, "error", err)
		}
	}
	return nil
}

// runModule expands one inventory into page jobs, registering each entry as
// a cross-reference target.
func (s *Service) runModule(cfg *config.Config, m *config.ModuleConfig, registry *descopt.Registry, xrefs *xref.Map, result *Result) ([]pageJob, error) {
	inv, err := apimodel.Load(m.Inventory)
	if err != nil {
		return nil, err
	}

	source, err := gitmeta.Resolve(m.Inventory)
	if err != nil {
		slog.Warn("Failed to resolve source revision",
			logfields.Path(m.Inventory), logfields.Error(err))
	}

	policy := entries.Policy{
		CaseInsensitiveFS:    cfg.CaseInsensitivePages(),
		SubscriptMethodTypes: m.SubscriptPattern(),
	}
	exp := entries.NewExpander(inv, policy)
	builder := &render.PageBuilder{
		ModuleName: inv.Module,
		Registry:   registry,
		Expander:   exp,
		Source:     source,
	}

	collected, err := collectEntries(exp, inv)
	if err != nil {
		s.recorder.IncParseFailure(inv.Module)
		return nil, err
	}
	s.recorder.SetObjectCount(inv.Module, len(collected))
	result.Objects += len(collected)

	split := make(map[string]int)
	var jobs []pageJob
	for _, e := range collected {
		if e.IsInherited {
			// Inherited members link to the base class page.
			continue
		}
		if e.Overload.OverloadID != "" {
			split[e.FullName]++
		}
		if e.HasNumericOverloadID() {
			slog.Warn("Overload id not specified, falling back to position",
				logfields.Object(e.FullName), "overload", e.Overload.OverloadID)
			result.Warnings++
		}
		if err := xrefs.Register(e.ObjectName(), e.PageName()); err != nil {
			return nil, err
		}
		page, err := builder.Build(e)
		if err != nil {
			return nil, err
		}
		raw, err := page.Markdown()
		if err != nil {
			return nil, apierrors.RenderError(page.Name, err)
		}
		jobs = append(jobs, pageJob{
			page:       page,
			dir:        m.OutputPath,
			objectName: e.ObjectName(),
			docHash:    xref.DocHash(raw),
		})
	}
	for _, n := range split {
		if n > 1 {
			s.recorder.IncOverloadsSplit(n)
		}
	}
	return jobs, nil
}

// collectEntries walks the inventory depth-first: per-overload entries for
// every top-level object, then member entries recursively for classes and
// modules.
func collectEntries(exp *entries.Expander, inv *apimodel.Inventory) ([]entries.Entry, error) {
	var out []entries.Entry
	descended := make(map[string]struct{})

	var descend func(parent *apimodel.Object) error
	descend = func(parent *apimodel.Object) error {
		if _, ok := descended[parent.FullName]; ok {
			return nil
		}
		descended[parent.FullName] = struct{}{}

		members, err := exp.Members(parent)
		if err != nil {
			return err
		}
		for _, m := range members {
			out = append(out, m)
			if m.Object.ObjType == apimodel.ObjTypeClass && !m.IsInherited {
				if err := descend(m.Object); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for i := range inv.Objects {
		obj := &inv.Objects[i]
		ents, err := exp.Overloads(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, ents...)
		if obj.ObjType == apimodel.ObjTypeClass || obj.ObjType == apimodel.ObjTypeModule {
			if err := descend(obj); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
