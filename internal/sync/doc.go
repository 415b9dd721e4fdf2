// Package sync mirrors one upstream resource into a local directory.
//
// A run lists the upstream tree, reconciles it against the local directory
// and the previous sync record, downloads every upstream item, deletes the
// items a previous run placed that are gone upstream, and finally persists
// the updated record. Files a user added by hand are never touched.
//
// # Modes
//
// In file mode every file is an asset and is keyed by its path relative to
// the remote root. In directory mode every top-level directory is an asset
// (a skill bundle, for example); it is downloaded file by file but deleted
// as a whole.
//
// # Failures
//
// A listing failure aborts the run before anything is written. A failed
// download or delete does not stop the run: the remaining items are still
// processed, the record is persisted, and Run returns a *PartialError so the
// caller can exit non-zero:
//
//	result, err := engine.Run(ctx, res, sync.Options{})
//	var partial *sync.PartialError
//	if errors.As(err, &partial) {
//	    fmt.Println(result.Summary())
//	}
//
// # Progress Reporting
//
// Options.Progress receives an Event per state change and per item. With
// DryRun set, planning runs in full but items are reported as
// ActionWouldDownload and ActionWouldDelete and nothing is written, not even
// the lock file.
package sync
