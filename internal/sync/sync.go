package sync

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/gitsource"
	"github.com/conorfennell/knoldeck/internal/knol"
	"github.com/conorfennell/knoldeck/internal/parser"
	"github.com/conorfennell/knoldeck/internal/storage"
)

// Syncer imports card sources into their decks.
type Syncer struct {
	db       *storage.DB
	reposDir string
	logger   *slog.Logger
	progress io.Writer
	now      func() time.Time
}

// NewSyncer returns a Syncer that checks git sources out under reposDir.
func NewSyncer(db *storage.DB, reposDir string, logger *slog.Logger) *Syncer {
	return &Syncer{db: db, reposDir: reposDir, logger: logger, now: time.Now}
}

// WithProgress sends git clone and pull progress to w.
func (s *Syncer) WithProgress(w io.Writer) *Syncer {
	s.progress = w
	return s
}

// Report summarizes a sync run.
type Report struct {
	Sources  int `json:"sources"`
	Failed   int `json:"failed"`
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
	Errors   int `json:"errors"`
}

// AddSource registers path as a source of deckName, creating the deck if it
// does not exist yet.
func (s *Syncer) AddSource(deckName, path string) (*storage.Source, error) {
	deckID, err := s.ensureDeck(deckName)
	if err != nil {
		return nil, err
	}

	sourceType := storage.SourceLocal
	if gitsource.IsGitURL(path) {
		sourceType = storage.SourceGit
	} else if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	id, err := s.db.InsertSource(deckID, path, sourceType)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Source added", "id", id, "deck", deckName, "type", sourceType, "path", path)
	return &storage.Source{ID: id, DeckID: deckID, Path: path, Type: sourceType}, nil
}

func (s *Syncer) ensureDeck(name string) (int64, error) {
	deck, err := s.db.FindDeckByName(name)
	if err == nil {
		return deck.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	return s.db.CreateDeck(name)
}

// RunSync iterates over all sources and reconciles them. A source that
// fails is logged and counted; the remaining sources are still synced.
func (s *Syncer) RunSync() (Report, error) {
	s.logger.Info("Starting sync process for all sources...")
	var report Report

	sources, err := s.db.GetAllSources()
	if err != nil {
		return report, err
	}
	if len(sources) == 0 {
		s.logger.Info("No sources configured. Add one with 'source add <deck> <path/or/url.git>'")
		return report, nil
	}

	for _, source := range sources {
		report.Sources++
		s.logger.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		localPath := source.Path
		if source.Type == storage.SourceGit {
			localPath, err = gitsource.LocalPath(s.reposDir, source.Path)
			if err != nil {
				s.logger.Error("Error determining local path for git repo", "url", source.Path, "error", err)
				report.Failed++
				continue
			}
			if err := gitsource.Sync(source.Path, localPath, s.progress, s.logger); err != nil {
				s.logger.Error("Error syncing git repo", "url", source.Path, "error", err)
				report.Failed++
				continue
			}
		}

		result, err := s.reconcile(source, localPath)
		if err != nil {
			s.logger.Error("Error reconciling source", "id", source.ID, "path", localPath, "error", err)
			report.Failed++
			continue
		}
		report.Inserted += result.Inserted
		report.Deleted += result.Deleted
		report.Errors += result.Errors
	}

	s.logger.Info("Sync process complete.",
		"sources", report.Sources,
		"failed", report.Failed,
		"inserted", report.Inserted,
		"deleted", report.Deleted,
	)
	return report, nil
}

// reconcile makes the source's cards in its deck match the notes found under
// dir: new notes become New cards at the end of the deck, cards whose note
// disappeared are deleted.
func (s *Syncer) reconcile(source storage.Source, dir string) (Report, error) {
	var (
		result      Report
		parsedNotes int
		found       = make(map[string]bool)
	)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		notes, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			s.logger.Warn("Error parsing file", "path", path, "error", parseErr)
			result.Errors++
		}
		for _, note := range notes {
			note.Hash = knol.Hash(note)
			parsedNotes++
			if found[note.Hash] {
				continue
			}
			found[note.Hash] = true

			inserted, err := s.insertIfMissing(source, note)
			if err != nil {
				s.logger.Warn("Error importing card", "hash", note.Hash, "error", err)
				result.Errors++
				continue
			}
			if inserted {
				result.Inserted++
			}
		}
		return nil
	})
	if walkErr != nil {
		return result, fmt.Errorf("walking %s: %w", dir, walkErr)
	}

	dbCards, err := s.db.GetCardsBySourceID(source.ID)
	if err != nil {
		return result, err
	}

	for _, card := range dbCards {
		if found[card.Hash] {
			continue
		}
		s.logger.Info("Orphaned card, deleting", "card_id", card.ID, "hash", card.Hash)
		if err := s.db.DeleteCard(card.ID); err != nil {
			s.logger.Warn("Failed to delete orphaned card", "card_id", card.ID, "error", err)
			result.Errors++
			continue
		}
		result.Deleted++
	}

	if err := s.db.UpdateSourceLastScanned(source.ID, s.now()); err != nil {
		s.logger.Warn("Failed to update last scanned for source", "source_id", source.ID, "error", err)
	}

	s.logger.Info("Reconciliation complete",
		"path", dir,
		"parsed_notes", parsedNotes,
		"inserted", result.Inserted,
		"orphaned_deleted", result.Deleted,
		"errors", result.Errors,
	)
	return result, nil
}

func (s *Syncer) insertIfMissing(source storage.Source, note domain.Note) (bool, error) {
	_, err := s.db.FindCardByHash(source.DeckID, note.Hash)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	pos, err := s.db.NextNewPosition(source.DeckID)
	if err != nil {
		return false, err
	}
	sourceID := source.ID
	id, err := s.db.InsertCard(source.DeckID, note, pos, &sourceID)
	if err != nil {
		return false, err
	}
	s.logger.Debug("New card found, inserted", "card_id", id, "hash", note.Hash, "position", pos)
	return true, nil
}
