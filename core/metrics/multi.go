package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(rec RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordStage forwards stage timings to sinks that support them.
func (m *MultiSink) RecordStage(rec StageRecord) error {
	for _, s := range m.Sinks {
		if sr, ok := s.(StageRecorder); ok {
			if err := sr.RecordStage(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordConflicts forwards conflict records to sinks that support them.
func (m *MultiSink) RecordConflicts(recs []ConflictRecord) error {
	for _, s := range m.Sinks {
		if cr, ok := s.(ConflictRecorder); ok {
			if err := cr.RecordConflicts(recs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordResolution forwards transition records to sinks that support them.
func (m *MultiSink) RecordResolution(rec ResolutionRecord) error {
	for _, s := range m.Sinks {
		if rr, ok := s.(ResolutionRecorder); ok {
			if err := rr.RecordResolution(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
