package bot

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
)

// TrackingStore is the bot's local cache of tracked games, persisted
// as a JSON object of game id to game title. It survives restarts so
// admin commands keep working when the store API is down.
type TrackingStore struct {
	mu    sync.Mutex
	path  string
	games map[string]string
}

func NewTrackingStore(path string) *TrackingStore {
	return &TrackingStore{
		path:  path,
		games: map[string]string{},
	}
}

// Load reads the tracking file. A missing file is not an error, the
// store just starts empty.
func (t *TrackingStore) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.games = map[string]string{}
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read tracking file")
	}

	games := map[string]string{}
	if err := json.Unmarshal(raw, &games); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse tracking file")
	}
	t.games = games
	return nil
}

func (t *TrackingStore) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, err := json.Marshal(t.games)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode tracking file")
	}
	if err := os.WriteFile(t.path, raw, 0o644); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write tracking file")
	}
	return nil
}

func (t *TrackingStore) Set(gameID, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.games[gameID] = title
}

// RemoveByTitle drops the first tracked entry with this title and
// reports whether anything was removed.
func (t *TrackingStore) RemoveByTitle(title string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, name := range t.games {
		if name == title {
			delete(t.games, id)
			return true
		}
	}
	return false
}

func (t *TrackingStore) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.games = map[string]string{}
}

// Titles returns the tracked game titles sorted for stable output.
func (t *TrackingStore) Titles() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	titles := make([]string, 0, len(t.games))
	for _, name := range t.games {
		titles = append(titles, name)
	}
	sort.Strings(titles)
	return titles
}
