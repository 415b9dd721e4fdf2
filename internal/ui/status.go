package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/klauern/workspace-architect/internal/sync"
)

// ItemLine renders one sync item as a status line.
func ItemLine(ir sync.ItemResult) string {
	switch ir.Action {
	case sync.ActionDownloaded:
		return StatusSuccess(fmt.Sprintf("%s %s", ir.Path, Dim(sizeNote(ir))))
	case sync.ActionDeleted:
		return StatusDeleted(ir.Path + " " + Dim("(removed upstream)"))
	case sync.ActionSkipped:
		msg := ir.Path
		if ir.Message != "" {
			msg += " " + Dim("("+ir.Message+")")
		}
		return StatusSkipped(msg)
	case sync.ActionWouldDownload:
		return StatusPending("would download " + ir.Path)
	case sync.ActionWouldDelete:
		return StatusPending("would delete " + ir.Path)
	case sync.ActionFailed:
		return StatusError(fmt.Sprintf("%s: %v", ir.Path, ir.Error))
	default:
		return ir.Path
	}
}

func sizeNote(ir sync.ItemResult) string {
	size := humanize.Bytes(uint64(max(ir.Size, 0))) // #nosec G115 - clamped to non-negative
	if ir.Files > 1 {
		return fmt.Sprintf("(%d files, %s)", ir.Files, size)
	}
	return "(" + size + ")"
}

// ResultLine renders the one-line outcome of a resource sync.
func ResultLine(r *sync.Result) string {
	switch {
	case r.State == sync.StateFailed:
		return StatusError(fmt.Sprintf("%s: aborted: %v", r.Resource, r.Err))
	case r.DryRun:
		return StatusPending(fmt.Sprintf("%s: %d to download, %d to delete (dry run)",
			r.Resource, len(r.WouldDownload()), len(r.WouldDelete())))
	case len(r.Failed()) > 0:
		return StatusWarning(fmt.Sprintf("%s: %d downloaded, %d deleted, %d failed",
			r.Resource, len(r.Downloaded()), len(r.Deleted()), len(r.Failed())))
	default:
		return StatusSuccess(fmt.Sprintf("%s: %d downloaded, %d deleted",
			r.Resource, len(r.Downloaded()), len(r.Deleted())))
	}
}
