package main

import (
	"github.com/bft-labs/pkfit/internal/adapters/metrics"
	"github.com/bft-labs/pkfit/internal/domain"
	"github.com/bft-labs/pkfit/internal/ports"
)

// textfileExporter rewrites the metrics textfile after each completed run.
type textfileExporter struct {
	recorder *metrics.Recorder
	path     string
	logger   ports.Logger
}

func (e *textfileExporter) OnRunComplete(s domain.RunSummary) {
	e.recorder.MarkRun(s.StartedAt)
	if err := e.recorder.WriteTextfile(e.path); err != nil {
		e.logger.Warn("failed to write metrics", ports.String("path", e.path), ports.Err(err))
	}
}
