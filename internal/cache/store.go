package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const documentFileName = "forge.cache.json"

// statRecord is what the in-memory stat cache keys a file's hash against:
// if neither has changed since the last time this path was hashed, the
// previously computed hash is reused instead of re-reading the file.
type statRecord struct {
	modTime time.Time
	size    int64
	hash    [16]byte
}

// Store is the Fingerprint & Cache Store for one member's build output
// directory. It holds the persisted entry document in memory, journals
// new entries as they are recorded, and memoizes file content hashes
// against mtime+size so an unchanged tree never gets rehashed twice in
// one run.
type Store struct {
	dir  string
	mu   sync.RWMutex
	docs map[Key]Entry

	statCache *lru.Cache[string, statRecord]

	journal *journal
}

// Open loads (or initializes) the cache document under dir, replays any
// journal records left over from a prior run that was interrupted before
// it could fold them into the document, drops every entry whose recorded
// output file no longer exists, and returns a ready Store. dir is
// typically the member's build output root.
func Open(dir string) (*Store, error) {
	stats, err := lru.New[string, statRecord](4096)
	if err != nil {
		return nil, err
	}
	s := &Store{
		dir:       dir,
		docs:      make(map[Key]Entry),
		statCache: stats,
	}

	if err := s.loadDocument(); err != nil {
		return nil, err
	}

	j, replayed, err := openJournal(dir)
	if err != nil {
		return nil, err
	}
	s.journal = j
	for key, entry := range replayed {
		s.docs[key] = entry
	}
	for key, entry := range s.docs {
		if _, err := os.Stat(entry.OutputPath); err != nil {
			delete(s.docs, key)
		}
	}

	return s, nil
}

func (s *Store) documentPath() string {
	return filepath.Join(s.dir, documentFileName)
}

func (s *Store) loadDocument() error {
	path := s.documentPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &IOError{Path: path, Cause: err}
	}
	if len(data) == 0 {
		return nil
	}

	var raw map[string]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return &IOError{Path: path, Cause: err}
	}
	for hexKey, entry := range raw {
		var key Key
		if err := decodeKeyHex(hexKey, &key); err != nil {
			continue
		}
		s.docs[key] = entry
	}
	return nil
}

// Lookup returns the recorded entry for key, if any.
func (s *Store) Lookup(key Key) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[key]
	return e, ok
}

// IsValid reports whether the recorded entry for key is still fresh
// against the given command line and current input hashes: the command
// line must match byte for byte, the input set must be identical in
// membership, and every input's hash must be unchanged. A missing entry
// is never valid, which is what makes a first build and a build after
// cache-purge behave identically — everything is an action-graph cache
// miss.
func (s *Store) IsValid(key Key, commandLine string, inputs []InputHash) bool {
	entry, ok := s.Lookup(key)
	if !ok {
		return false
	}
	if entry.CommandLine != commandLine {
		return false
	}
	if len(entry.Inputs) != len(inputs) {
		return false
	}
	recorded := make(map[string][16]byte, len(entry.Inputs))
	for _, in := range entry.Inputs {
		recorded[in.Path] = in.Hash
	}
	for _, in := range inputs {
		want, ok := recorded[in.Path]
		if !ok || want != in.Hash {
			return false
		}
	}
	if _, err := os.Stat(entry.OutputPath); err != nil {
		return false
	}
	return true
}

// Record stores entry under key and appends it to the journal so a crash
// before the next Flush does not lose it.
func (s *Store) Record(key Key, entry Entry) error {
	s.mu.Lock()
	s.docs[key] = entry
	s.mu.Unlock()

	if s.journal == nil {
		return nil
	}
	return s.journal.append(key, entry)
}

// Purge drops every recorded entry whose key is not in keep; a nil keep
// drops every entry, which is how `forge clean` uses it.
func (s *Store) Purge(keep map[Key]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.docs {
		if _, ok := keep[key]; !ok {
			delete(s.docs, key)
		}
	}
}

// HashPath returns the content hash of the file at path, reusing a
// previously computed hash when the file's mtime and size have not
// changed since it was last hashed.
func (s *Store) HashPath(path string) ([16]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return [16]byte{}, err
	}

	if rec, ok := s.statCache.Get(path); ok {
		if rec.modTime.Equal(info.ModTime()) && rec.size == info.Size() {
			return rec.hash, nil
		}
	}

	sum, err := hashFile(path)
	if err != nil {
		return [16]byte{}, err
	}
	s.statCache.Add(path, statRecord{modTime: info.ModTime(), size: info.Size(), hash: sum})
	return sum, nil
}

// Flush atomically rewrites the cache document from the in-memory state
// and truncates the journal, so the next Open starts from a document that
// already reflects every entry recorded this run.
func (s *Store) Flush() error {
	s.mu.RLock()
	raw := make(map[string]Entry, len(s.docs))
	for key, entry := range s.docs {
		raw[key.String()] = entry
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}

	path := s.documentPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &IOError{Path: path, Cause: err}
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return &IOError{Path: path, Cause: err}
	}

	if s.journal != nil {
		if err := s.journal.truncate(); err != nil {
			return err
		}
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the same directory as path
// and renames it into place, so a crash mid-write never leaves a
// truncated or partially-written document behind — spec.md §3's
// write-temp-then-rename invariant.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
