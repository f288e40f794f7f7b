// internal/engine/splits.go
package engine

import (
	"github.com/jdharms/jumpking-autosplitter/internal/config"
	"github.com/jdharms/jumpking-autosplitter/internal/split"
	"github.com/sirupsen/logrus"
)

// LoadReport describes what happened while loading a document
type LoadReport struct {
	Loaded          int  // conditions in the new list
	Skipped         int  // malformed entries dropped
	HashMismatch    bool // stored hash differs from the recomputed fingerprint
	StoredHash      uint32
	Fingerprint     uint32
	SegmentMismatch bool // list length differs from the timer's segment count
}

// SplitInfo is a read-only view of one configured split
type SplitInfo struct {
	Index   int
	Name    string
	Kind    split.Kind
	Current bool
}

// Clear removes every split and drops any pending undo candidate
func (se *SplittingEngine) Clear() {
	se.mu.Lock()
	defer se.mu.Unlock()

	se.list.Clear()
	se.undo = nil
	se.logger.Info("Split list cleared")
}

// AddSplits appends conditions to the end of the split list
func (se *SplittingEngine) AddSplits(conditions ...split.Condition) {
	se.mu.Lock()
	defer se.mu.Unlock()

	before := se.list.Len()
	se.list.AddSplits(conditions...)
	se.logger.WithFields(logrus.Fields{
		"added": se.list.Len() - before,
		"total": se.list.Len(),
	}).Info("Splits added")
}

// LoadDocument replaces the split list and settings with the document's.
// Malformed split entries are skipped; a stale hash or a list that does not
// match the timer's segments is reported and logged but still loaded.
func (se *SplittingEngine) LoadDocument(doc *config.Document) LoadReport {
	se.mu.Lock()
	defer se.mu.Unlock()

	se.undo = nil
	if doc == nil {
		doc = &config.Document{}
	}

	report := LoadReport{}
	report.Skipped = se.list.Load(se.logger, doc.Splits)
	report.Loaded = se.list.Len()
	se.settings = config.LoadSettings(doc.Settings)
	report.Fingerprint = se.fingerprint()

	if doc.Hash != nil && *doc.Hash != report.Fingerprint {
		report.HashMismatch = true
		report.StoredHash = *doc.Hash
		se.logger.WithFields(logrus.Fields{
			"stored_hash":   *doc.Hash,
			"computed_hash": report.Fingerprint,
		}).Warn("Configuration hash mismatch - document was edited or saved by another version")
	}

	if segments := se.timer.SegmentCount(); segments != report.Loaded {
		report.SegmentMismatch = true
		se.logger.WithFields(logrus.Fields{
			"splits":   report.Loaded,
			"segments": segments,
		}).Warn("Split count does not match timer segment count")
	}

	se.logger.WithFields(logrus.Fields{
		"splits":           report.Loaded,
		"skipped":          report.Skipped,
		"auto_start_timer": se.settings.AutoStartTimer,
		"auto_reset_timer": se.settings.AutoResetTimer,
		"undo_split":       se.settings.UndoSplit,
	}).Info("Configuration loaded")

	return report
}

// Document returns the current configuration stamped with its fingerprint
func (se *SplittingEngine) Document() *config.Document {
	se.mu.Lock()
	defer se.mu.Unlock()
	return config.NewDocument(se.list, se.settings)
}

// Fingerprint returns the current configuration fingerprint
func (se *SplittingEngine) Fingerprint() uint32 {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.fingerprint()
}

func (se *SplittingEngine) fingerprint() uint32 {
	return config.Fingerprint(se.list, se.settings)
}

// Settings returns the current toggles
func (se *SplittingEngine) Settings() config.Settings {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.settings
}

// SetSettings replaces every toggle. Disabling undo drops a pending
// candidate.
func (se *SplittingEngine) SetSettings(settings config.Settings) {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.applySettings(settings)
}

// SetToggle changes a single toggle by name. Turning UndoSplit off also
// drops a pending undo candidate.
func (se *SplittingEngine) SetToggle(name string, value bool) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	settings := se.settings
	if err := settings.Set(name, value); err != nil {
		return err
	}
	se.applySettings(settings)
	return nil
}

func (se *SplittingEngine) applySettings(settings config.Settings) {
	se.settings = settings
	if !settings.UndoSplit && se.undo != nil {
		se.removeUndoSplit()
	}
	se.logger.WithFields(logrus.Fields{
		"auto_start_timer": settings.AutoStartTimer,
		"auto_reset_timer": settings.AutoResetTimer,
		"undo_split":       settings.UndoSplit,
	}).Info("Settings updated")
}

// ResetProgress clears the progress of every condition and the pending undo
// candidate without touching the timer
func (se *SplittingEngine) ResetProgress() {
	se.mu.Lock()
	defer se.mu.Unlock()

	se.list.Reset()
	se.undo = nil
}

// Splits returns a snapshot of the configured splits
func (se *SplittingEngine) Splits() []SplitInfo {
	se.mu.Lock()
	defer se.mu.Unlock()

	current := se.timer.CurrentIndex()
	conditions := se.list.Conditions()
	infos := make([]SplitInfo, len(conditions))
	for i, c := range conditions {
		infos[i] = SplitInfo{
			Index:   i,
			Name:    c.Name(),
			Kind:    c.Kind(),
			Current: i == current,
		}
	}
	return infos
}
