// Package prefs persists the user preferences in a TOML file and notifies
// observers when they change, whether through this process or an edit on disk.
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"colljump/internal/application"
	"colljump/internal/config"
	"colljump/internal/domain"
	"colljump/internal/logging"
	"colljump/internal/ports"
)

// document mirrors the preference names: extensions.colljump.<name>
type document struct {
	Extensions struct {
		Colljump table `toml:"colljump"`
	} `toml:"extensions"`
}

type table struct {
	EnableTreePane *bool `toml:"enableTreePane,omitempty"`
	PanelHeight    *int  `toml:"panelHeight,omitempty"`
}

func (t table) preferences() domain.Preferences {
	p := domain.DefaultPreferences()
	if t.EnableTreePane != nil {
		p.EnableTreePane = *t.EnableTreePane
	}
	if t.PanelHeight != nil && *t.PanelHeight > 0 {
		p.PanelHeight = domain.ClampPanelHeight(*t.PanelHeight)
	}
	return p
}

type observer struct {
	prefix string
	fn     func(fullName string)
}

// Store implements ports.PreferenceStore
type Store struct {
	path   string
	lock   *flock.Flock
	logger *log.Logger

	mu        sync.Mutex
	current   domain.Preferences
	observers map[int]observer
	nextObs   int
}

// Ensure Store implements ports.PreferenceStore
var _ ports.PreferenceStore = (*Store)(nil)

// Open loads the preference file at path. A missing file yields defaults.
func Open(path string, logger *log.Logger) (*Store, error) {
	path = config.ExpandHome(path)
	s := &Store{
		path:      path,
		lock:      flock.New(path + ".lock"),
		logger:    logging.OrDiscard(logger),
		observers: make(map[int]observer),
	}

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	s.current = doc.Extensions.Colljump.preferences()
	return s, nil
}

// Path returns the preference file path
func (s *Store) Path() string {
	return s.path
}

// Load returns the current preferences
func (s *Store) Load() domain.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetEnableTreePane stores the tree pane toggle
func (s *Store) SetEnableTreePane(enabled bool) error {
	return s.update(func(t *table) { t.EnableTreePane = &enabled })
}

// SetPanelHeight stores px clamped to the allowed range. Non-positive values
// are rejected, since the file treats them as unset.
func (s *Store) SetPanelHeight(px int) (int, error) {
	if err := application.ValidatePanelHeight(px); err != nil {
		return s.Load().PanelHeight, err
	}
	clamped := domain.ClampPanelHeight(px)
	if clamped != px {
		s.logger.Debug("panel height clamped", "requested", px, "stored", clamped)
	}
	return clamped, s.update(func(t *table) { t.PanelHeight = &clamped })
}

// Set stores a preference by its full or relative name from a string value
func (s *Store) Set(name, value string) error {
	switch strings.TrimPrefix(name, domain.PrefPrefix) {
	case domain.PrefEnableTreePane:
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		return s.SetEnableTreePane(b)
	case domain.PrefPanelHeight:
		var px int
		if _, err := fmt.Sscan(value, &px); err != nil {
			return fmt.Errorf("panelHeight must be an integer: %q", value)
		}
		_, err := s.SetPanelHeight(px)
		return err
	default:
		return fmt.Errorf("unknown preference: %s", name)
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", v)
	}
}

// Observe calls fn with the full name of each changed preference under
// prefix
func (s *Store) Observe(prefix string, fn func(fullName string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObs
	s.nextObs++
	s.observers[id] = observer{prefix: prefix, fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Reload re-reads the file and notifies observers of what changed on disk
func (s *Store) Reload() error {
	doc, err := s.read()
	if err != nil {
		return err
	}
	s.apply(doc.Extensions.Colljump.preferences())
	return nil
}

func (s *Store) update(mutate func(*table)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preference directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock preferences: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to unlock preferences", "err", err)
		}
	}()

	doc, err := s.read()
	if err != nil {
		return err
	}
	mutate(&doc.Extensions.Colljump)

	if err := s.write(doc); err != nil {
		return err
	}
	s.apply(doc.Extensions.Colljump.preferences())
	return nil
}

func (s *Store) read() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read preferences: %w", err)
	}
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return doc, fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	return doc, nil
}

// write replaces the file atomically so watchers never see a partial file
func (s *Store) write(doc document) error {
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// apply swaps in next and notifies observers of each name whose value
// differs
func (s *Store) apply(next domain.Preferences) {
	s.mu.Lock()
	prev := s.current
	s.current = next

	var changed []string
	if prev.EnableTreePane != next.EnableTreePane {
		changed = append(changed, domain.PrefKey(domain.PrefEnableTreePane))
	}
	if prev.PanelHeight != next.PanelHeight {
		changed = append(changed, domain.PrefKey(domain.PrefPanelHeight))
	}

	var targets []observer
	for _, o := range s.observers {
		targets = append(targets, o)
	}
	s.mu.Unlock()

	for _, name := range changed {
		s.logger.Debug("preference changed", "name", name)
		for _, o := range targets {
			if strings.HasPrefix(name, o.prefix) {
				s.notify(o, name)
			}
		}
	}
}

func (s *Store) notify(o observer, name string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("preference observer panicked", "name", name, "panic", r)
		}
	}()
	o.fn(name)
}
