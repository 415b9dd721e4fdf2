package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/klauern/workspace-architect/internal/config"
	"github.com/klauern/workspace-architect/internal/localfs"
	"github.com/klauern/workspace-architect/internal/logging"
	"github.com/klauern/workspace-architect/internal/model"
	"github.com/klauern/workspace-architect/internal/reconcile"
	"github.com/klauern/workspace-architect/internal/record"
	"github.com/klauern/workspace-architect/internal/remote"
	"github.com/klauern/workspace-architect/internal/syncerr"
)

// Engine syncs resources from GitHub or from local upstream directories.
type Engine struct {
	github remote.Source
	local  remote.Source
}

// New creates an Engine. github serves every non-local source.
func New(github remote.Source) *Engine {
	return &Engine{github: github, local: remote.NewDir()}
}

func (e *Engine) upstream(src model.AssetSource) remote.Source {
	if src.IsLocal() {
		return e.local
	}
	return e.github
}

// run carries the state of a single Engine.Run call.
type run struct {
	opts   Options
	res    *config.Resource
	src    model.AssetSource
	up     remote.Source
	target string
	result *Result
	logger *slog.Logger
	now    time.Time
	done   int
	total  int
}

// Run syncs one resource. The returned Result is never nil. The error is a
// *PartialError when the run completed with failed items, and any other
// error when the run was aborted.
func (e *Engine) Run(ctx context.Context, res *config.Resource, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{
		Resource: res.Name,
		Upstream: res.Upstream(),
		LocalDir: res.TargetDir(),
		Mode:     res.Mode(),
		DryRun:   opts.DryRun,
		State:    StateIdle,
	}
	defer func() { result.Duration = time.Since(start) }()

	r := &run{
		opts:   opts,
		res:    res,
		target: res.TargetDir(),
		result: result,
		logger: logging.WithContext(ctx).With(logging.Resource(res.Name), logging.DryRun(opts.DryRun)),
		now:    opts.now(),
	}

	if err := res.Validate(); err != nil {
		return r.fail(syncerr.New(syncerr.ErrConfigurationInvalid, "validate", res.Name, err))
	}
	src, err := res.AssetSource()
	if err != nil {
		return r.fail(err)
	}
	r.src = src
	r.up = e.upstream(src)
	result.Source = src.ID()
	r.logger = r.logger.With(logging.Source(src.ID()))

	if !opts.DryRun {
		lock, err := record.Acquire(r.target)
		if err != nil {
			return r.fail(err)
		}
		defer func() {
			if err := lock.Release(); err != nil {
				r.logger.Warn("failed to release lock", logging.Err(err))
			}
		}()
	}

	rec, err := record.Load(r.target)
	if err != nil {
		if !errors.Is(err, syncerr.ErrMetadataCorrupt) {
			return r.fail(err)
		}
		r.logger.Warn("ignoring unreadable sync record, no files will be deleted this run", logging.Err(err))
		result.RecordWarning = err
	}
	result.Shape = rec.Shape()
	prev := rec.Entry(src.ID())

	var entry model.SourceEntry
	if res.Mode() == model.SyncModeDirectory {
		entry, err = r.syncAssets(ctx, prev)
	} else {
		entry, err = r.syncFiles(ctx, prev)
	}
	if err != nil {
		return r.fail(err)
	}
	result.Entry = entry

	if opts.DryRun {
		r.transition(StateDone)
		return result, nil
	}

	r.transition(StatePersisting)
	rec.Upsert(entry)
	if err := record.Save(r.target, rec); err != nil {
		return r.fail(err)
	}
	r.transition(StateDone)

	r.logger.Info("sync complete",
		"downloaded", len(result.Downloaded()),
		"deleted", len(result.Deleted()),
		"failed", len(result.Failed()),
		logging.Duration(time.Since(start)))

	if failed := result.Failed(); len(failed) > 0 {
		return result, &PartialError{Resource: res.Name, Failed: failed}
	}
	return result, nil
}

// RunAll syncs each resource in order. A failure does not stop the remaining
// resources; all errors are joined.
func (e *Engine) RunAll(ctx context.Context, resources []*config.Resource, opts Options) ([]*Result, error) {
	results := make([]*Result, 0, len(resources))
	var errs []error
	for _, res := range resources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := e.Run(ctx, res, opts)
		results = append(results, result)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, err))
		}
	}
	return results, errors.Join(errs...)
}

func (r *run) transition(to State) {
	if !CanTransition(r.result.State, to) {
		r.logger.Debug("unexpected state transition", "from", r.result.State, "to", to)
	}
	r.result.State = to
	r.logger.Debug("state", "state", to)
	r.opts.emit(Event{Kind: EventState, Resource: r.result.Resource, State: to})
}

func (r *run) fail(err error) (*Result, error) {
	r.result.Err = err
	r.transition(StateFailed)
	r.logger.Error("sync aborted", logging.Err(err))
	return r.result, err
}

// report records an item outcome, logs it and emits a progress event.
func (r *run) report(ir ItemResult) {
	r.done++
	r.result.add(ir)

	attrs := []any{logging.Path(ir.Path)}
	switch ir.Action {
	case ActionFailed:
		r.logger.Warn("item failed", append(attrs, logging.Err(ir.Error))...)
	case ActionSkipped:
		r.logger.Info("skipped", append(attrs, "reason", ir.Message)...)
	default:
		r.logger.Info(string(ir.Action), append(attrs, logging.Size(ir.Size))...)
	}

	r.opts.emit(Event{
		Kind:     EventItem,
		Resource: r.result.Resource,
		State:    r.result.State,
		Item:     &r.result.Items[len(r.result.Items)-1],
		Index:    r.done,
		Total:    r.total,
	})
}

// present reports whether key still exists in the target directory.
func (r *run) present(key string) bool {
	p, err := localfs.Resolve(r.target, key)
	if err != nil {
		return false
	}
	return localfs.Exists(p)
}

func (r *run) syncFiles(ctx context.Context, prev model.SourceEntry) (model.SourceEntry, error) {
	r.transition(StateListing)
	entries, err := remote.ListRecursive(ctx, r.up, r.src, r.res.Filter())
	if err != nil {
		return model.SourceEntry{}, err
	}
	local, err := localfs.ListRecursive(r.target, r.res.AcceptedExtensions)
	if err != nil {
		return model.SourceEntry{}, err
	}

	r.transition(StatePlanning)
	plan := reconcile.Compute(r.src.ID(), entries, local, prev, r.now)
	r.logger.Info("plan ready",
		"remote", len(entries), "local", len(local),
		"download", len(plan.ToDownload), "delete", len(plan.ToDelete))

	r.transition(StateExecuting)
	r.total = len(plan.ToDownload) + len(plan.ToDelete)
	var failed []string
	for _, item := range plan.ToDownload {
		ir := r.downloadFile(ctx, item)
		if !ir.Success() {
			failed = append(failed, ir.Path)
		}
		r.report(ir)
	}
	for _, key := range plan.ToDelete {
		ir := r.remove(ctx, key, localfs.RemoveFile)
		if !ir.Success() {
			failed = append(failed, ir.Path)
		}
		r.report(ir)
	}

	if r.opts.DryRun {
		return plan.Entry, nil
	}
	return reconcile.Settle(plan, failed, r.present, r.now), nil
}

func (r *run) syncAssets(ctx context.Context, prev model.SourceEntry) (model.SourceEntry, error) {
	r.transition(StateListing)
	listing, err := remote.ListAssets(ctx, r.up, r.src, r.res.Filter(), r.res.RequiredFile)
	if err != nil {
		return model.SourceEntry{}, err
	}
	local, err := localfs.ListDirs(r.target)
	if err != nil {
		return model.SourceEntry{}, err
	}

	// Assets whose tree could not be listed and assets missing the marker
	// are still upstream. They stay in the remote set so they are never
	// deleted, and are held back from download.
	skipped := mapset.NewThreadUnsafeSet(listing.Skipped...)
	items := listing.Assets
	for _, name := range slices.Sorted(maps.Keys(listing.Failed)) {
		items = append(items, model.RemoteAsset{Name: name})
	}
	for _, name := range listing.Skipped {
		items = append(items, model.RemoteAsset{Name: name})
	}

	r.transition(StatePlanning)
	plan := reconcile.Compute(r.src.ID(), items, local, prev, r.now)
	r.logger.Info("plan ready",
		"remote", len(listing.Assets), "local", len(local),
		"download", len(plan.ToDownload)-len(listing.Skipped), "delete", len(plan.ToDelete),
		"skipped", len(listing.Skipped))

	r.transition(StateExecuting)
	r.total = len(plan.ToDownload) + len(plan.ToDelete)

	var held []string
	for _, asset := range plan.ToDownload {
		var ir ItemResult
		switch lerr, failed := listing.Failed[asset.Name]; {
		case failed:
			ir = ItemResult{Path: asset.Name, Action: ActionFailed, Error: lerr, Message: "listing failed"}
		case skipped.Contains(asset.Name):
			ir = ItemResult{Path: asset.Name, Action: ActionSkipped, Message: fmt.Sprintf("missing %s", r.res.RequiredFile)}
			held = append(held, asset.Name)
		default:
			ir = r.downloadAsset(ctx, asset)
		}
		if ir.Action == ActionFailed {
			held = append(held, ir.Path)
		}
		r.report(ir)
	}
	for _, name := range plan.ToDelete {
		ir := r.remove(ctx, name, localfs.RemovePath)
		if !ir.Success() {
			held = append(held, ir.Path)
		}
		r.report(ir)
	}

	return reconcile.Settle(plan, held, r.present, r.now), nil
}

func (r *run) downloadFile(ctx context.Context, item model.RemoteEntry) ItemResult {
	ir := ItemResult{Path: item.Path}
	if err := ctx.Err(); err != nil {
		ir.Action, ir.Error = ActionFailed, err
		return ir
	}
	if r.opts.DryRun {
		ir.Action, ir.Size = ActionWouldDownload, item.Size
		return ir
	}

	n, err := r.fetch(ctx, r.target, item)
	if err != nil {
		ir.Action, ir.Error = ActionFailed, err
		return ir
	}
	ir.Action, ir.Size, ir.Files = ActionDownloaded, n, 1
	return ir
}

func (r *run) downloadAsset(ctx context.Context, asset model.RemoteAsset) ItemResult {
	ir := ItemResult{Path: asset.Name}
	if err := ctx.Err(); err != nil {
		ir.Action, ir.Error = ActionFailed, err
		return ir
	}
	if r.opts.DryRun {
		ir.Action, ir.Size, ir.Files = ActionWouldDownload, asset.TotalSize(), len(asset.Files)
		return ir
	}

	base, err := localfs.Resolve(r.target, asset.Name)
	if err != nil {
		ir.Action, ir.Error = ActionFailed, err
		return ir
	}

	var errs []error
	for _, f := range asset.Files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		n, err := r.fetch(ctx, base, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ir.Size += n
		ir.Files++
	}
	if len(errs) > 0 {
		ir.Action, ir.Error = ActionFailed, errors.Join(errs...)
		ir.Message = fmt.Sprintf("%d of %d files written", ir.Files, len(asset.Files))
		return ir
	}
	ir.Action = ActionDownloaded
	return ir
}

// fetch downloads one file below dir and returns the bytes written.
func (r *run) fetch(ctx context.Context, dir string, item model.RemoteEntry) (int64, error) {
	dest, err := localfs.Resolve(dir, item.Path)
	if err != nil {
		return 0, err
	}
	data, err := r.up.FetchFile(ctx, item.DownloadURL)
	if err != nil {
		return 0, syncerr.New(syncerr.ErrDownloadFailed, "download", item.Path, err)
	}
	if err := localfs.WriteFile(dest, data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (r *run) remove(ctx context.Context, key string, rm func(string) error) ItemResult {
	ir := ItemResult{Path: key}
	if err := ctx.Err(); err != nil {
		ir.Action, ir.Error = ActionFailed, err
		return ir
	}
	if r.opts.DryRun {
		ir.Action = ActionWouldDelete
		return ir
	}

	p, err := localfs.Resolve(r.target, key)
	if err == nil {
		err = rm(p)
	}
	if err != nil {
		ir.Action, ir.Error = ActionFailed, err
		return ir
	}
	ir.Action = ActionDeleted
	return ir
}
