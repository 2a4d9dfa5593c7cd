package ledger

import (
	"fmt"
	"time"

	"github.com/fintrack-dev/fintrack/internal/events"
	"github.com/fintrack-dev/fintrack/internal/id"
	"github.com/fintrack-dev/fintrack/internal/model"
)

// AddFile records the provenance of one uploaded statement file. The
// declared transaction count is recomputed from actual membership, so
// callers normally add the file record first and its transactions next.
func (s *Service) AddFile(f model.FileRecord) (model.FileRecord, error) {
	if f.ID == "" {
		f.ID = id.New()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	err := s.mutate("add-file", func(c *model.Collections) error {
		for _, existing := range c.Files {
			if existing.ID == f.ID {
				return fmt.Errorf("file %q already recorded", f.ID)
			}
		}
		c.Files = append(c.Files, f)
		return nil
	})
	if err != nil {
		return model.FileRecord{}, err
	}
	return f, nil
}

// Files returns all file records.
func (s *Service) Files() []model.FileRecord {
	return s.Collections().Files
}

// DeleteFile removes a file record and cascades to every transaction that
// references it, plus their categorizations. Returns how many
// transactions were removed.
func (s *Service) DeleteFile(fileID string) (int, error) {
	removed := 0
	err := s.mutate("delete-file", func(c *model.Collections) error {
		keptFiles := c.Files[:0]
		found := false
		for _, f := range c.Files {
			if f.ID == fileID {
				found = true
				continue
			}
			keptFiles = append(keptFiles, f)
		}
		if !found {
			return fmt.Errorf("%w: file %q", ErrNotFound, fileID)
		}
		c.Files = keptFiles

		gone := make(map[string]bool)
		keptTxs := c.Transactions[:0]
		for _, t := range c.Transactions {
			if t.FileID == fileID {
				gone[t.ID] = true
				removed++
				continue
			}
			keptTxs = append(keptTxs, t)
		}
		c.Transactions = keptTxs
		dropCategorizations(c, gone)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.publish(events.Event{Kind: events.KindFileDeleted, FileID: fileID, Count: removed})
	return removed, nil
}
