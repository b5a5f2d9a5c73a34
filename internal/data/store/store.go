package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-storyteller/internal/core/model"
	"github.com/penwyp/go-storyteller/internal/util"
)

// ErrCorruptStore marks a persisted collection file that exists but
// cannot be decoded. It is fatal for reads and merges: treating it as
// empty would look exactly like data loss.
var ErrCorruptStore = errors.New("persisted event collection is corrupt")

// MergeResult summarizes one merge invocation.
type MergeResult struct {
	Inserted   int
	Duplicates int
}

// Store owns the persisted event collection and is its sole writer.
// Merges are serialized; readers get defensive snapshot copies, so a
// query never observes a collection mid-merge.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store persisting to the given file path. The file
// is created on first merge; a missing file reads as an empty
// collection.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the persisted collection's file path.
func (s *Store) Path() string {
	return s.path
}

// Merge adds the non-duplicate events of the batch to the persisted
// collection. Atomic per invocation: either every inserted event of
// the batch becomes visible or, on a write failure, none does and the
// prior file is left intact.
func (s *Store) Merge(newEvents []model.Event) (*MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil {
		return nil, err
	}

	index := newDedupIndex(existing)
	result := &MergeResult{}
	merged := existing

	for _, ev := range newEvents {
		if index.Seen(ev) {
			// The existing persisted event wins; the incoming one is
			// discarded.
			result.Duplicates++
			continue
		}
		index.Mark(ev)
		merged = append(merged, ev)
		result.Inserted++
	}

	if result.Inserted == 0 {
		util.LogDebug(fmt.Sprintf("Merge inserted nothing (%d duplicates), store unchanged", result.Duplicates))
		return result, nil
	}

	sortEvents(merged)
	if err := s.write(merged); err != nil {
		return nil, err
	}

	util.LogDebug(fmt.Sprintf("Merge completed: %d inserted, %d duplicates, %d total",
		result.Inserted, result.Duplicates, len(merged)))
	return result, nil
}

// LoadAll returns an immutable snapshot of the persisted collection,
// ordered by timestamp ascending with ties broken by source type then
// title.
func (s *Store) LoadAll() ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.read()
	if err != nil {
		return nil, err
	}
	sortEvents(events)
	return events, nil
}

func (s *Store) read() ([]model.Event, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var events []model.Event
	if err := sonic.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}
	return events, nil
}

// write persists atomically: the collection is serialized to a
// temporary file in the same directory and renamed over the previous
// one, so an abrupt termination can never leave a truncated file in
// place of valid data.
func (s *Store) write(events []model.Event) error {
	data, err := sonic.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func sortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Less(events[j])
	})
}
