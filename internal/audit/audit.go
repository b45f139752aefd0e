package audit

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/hocktide/v-c-tool/internal/configs"
)

// Entry is one line of the history log. It never holds key material.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // Local account that ran the command.
	Operation string `json:"op"`

	EntityID  string `json:"entity_id,omitempty"`
	Suite     string `json:"suite,omitempty"`
	Path      string `json:"path,omitempty"`   // File written.
	Source    string `json:"source,omitempty"` // Key file read, for pubkey.
	Encrypted bool   `json:"encrypted,omitempty"`
	Rounds    uint32 `json:"rounds,omitempty"`
}

// LogPath returns the path to the history log.
func LogPath() string {
	return filepath.Join(configs.UserSettings.ConfigsPath, "history.jsonl")
}

// Log appends an entry to the history log. Logging is best-effort: a
// failure here never fails the operation being recorded.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if entry.User == "" {
		if current, err := user.Current(); err == nil {
			entry.User = current.Username
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(LogPath()), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(LogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the history log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	data, err := os.ReadFile(LogPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data into entries. Malformed lines, such
// as a write cut short, are skipped.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i < len(data) && data[i] != '\n' {
			continue
		}
		line := data[start:i]
		start = i + 1

		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}
