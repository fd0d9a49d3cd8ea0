package convert

// Package convert implements the batch conversion pipeline (selection ->
// per-file transform -> packaging -> deliverable) and the job service the UI
// uses to run it in the background with progress updates and cancellation.
