package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mardromus/scrumdinger/models"
	yaml "gopkg.in/yaml.v3"
)

const (
	defaultDataFile   = "scrums.json"
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
	defaultDataFormat = "json"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"
	checksumSuffix    = ".checksum"
)

// Sentinel errors for lookups.
var (
	ErrScrumNotFound = errors.New("scrum not found")
	ErrTeamNotFound  = errors.New("team not found")
)

// fileData is the on-disk document holding all persisted records.
type fileData struct {
	Scrums []models.Scrum `json:"scrums" yaml:"scrums" toml:"scrums"`
	Teams  []models.Team  `json:"teams" yaml:"teams" toml:"teams"`
}

// FileScrumStore implements the ScrumStore interface using a file backend.
// It supports JSON, YAML, and TOML formats and uses file-level locking.
type FileScrumStore struct {
	filePath string
	scrums   map[string]models.Scrum
	teams    map[string]models.Team
	flk      *flock.Flock
	format   string
}

// NewFileScrumStore creates a new instance of FileScrumStore.
// It does not initialize the store; Initialize must be called separately.
func NewFileScrumStore() *FileScrumStore {
	return &FileScrumStore{
		scrums: make(map[string]models.Scrum),
		teams:  make(map[string]models.Team),
	}
}

// Initialize configures the FileScrumStore. It expects a 'dataFile' key in
// the config map specifying the path to the data file; the default is
// 'scrums.json' in the current working directory. Existing records are
// loaded and a file lock is established.
func (s *FileScrumStore) Initialize(config map[string]string) error {
	if val, ok := config[dataFileKey]; ok && val != "" {
		s.filePath = val
	} else {
		s.filePath = defaultDataFile
	}

	if val, ok := config[dataFileFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML, formatTOML:
			s.format = formatLower
		default:
			return fmt.Errorf("unsupported dataFileFormat: %s. Supported formats are json, yaml, toml", val)
		}
	} else {
		s.format = defaultDataFormat
	}

	if s.filePath == defaultDataFile && s.format != formatJSON {
		ext := filepath.Ext(s.filePath)
		s.filePath = strings.TrimSuffix(s.filePath, ext) + "." + s.format
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	s.flk = flock.New(s.filePath)

	locked, err := s.flk.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire initial lock for %s: %w", s.filePath, err)
	}
	if !locked {
		if err := s.flk.Lock(); err != nil {
			return fmt.Errorf("failed to acquire blocking initial lock for %s: %w", s.filePath, err)
		}
	}
	defer func() { _ = s.flk.Unlock() }()

	s.scrums = make(map[string]models.Scrum)
	s.teams = make(map[string]models.Team)
	return s.loadFromFileInternal()
}

// calculateChecksum computes the SHA256 checksum of the given data.
func calculateChecksum(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// loadFromFileInternal reads records from the file, verifies the checksum,
// and unmarshals. The caller must hold the file lock.
func (s *FileScrumStore) loadFromFileInternal() error {
	checksumFilePath := s.filePath + checksumSuffix

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.scrums = make(map[string]models.Scrum)
			s.teams = make(map[string]models.Team)
			_ = os.Remove(checksumFilePath)
			f, createErr := os.OpenFile(s.filePath, os.O_CREATE|os.O_RDWR, 0o644)
			if createErr != nil {
				return fmt.Errorf("failed to create data file %s: %w", s.filePath, createErr)
			}
			_ = f.Close()
			_ = os.WriteFile(checksumFilePath, []byte(calculateChecksum([]byte{})), 0o644)
			return nil
		}
		return fmt.Errorf("failed to read data file %s: %w", s.filePath, err)
	}

	if _, err := os.Stat(checksumFilePath); err == nil {
		expectedChecksumBytes, readErr := os.ReadFile(checksumFilePath)
		if readErr != nil {
			return fmt.Errorf("failed to read checksum file %s: %w - data file might be corrupt or tampered", checksumFilePath, readErr)
		}
		expectedChecksum := strings.TrimSpace(string(expectedChecksumBytes))
		actualChecksum := calculateChecksum(data)

		if actualChecksum != expectedChecksum {
			return fmt.Errorf("checksum mismatch for %s - expected %s, got %s - file is corrupt or tampered", s.filePath, expectedChecksum, actualChecksum)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking checksum file %s: %w", checksumFilePath, err)
	}

	if len(data) == 0 {
		_ = os.WriteFile(checksumFilePath, []byte(calculateChecksum([]byte{})), 0o644)
		s.scrums = make(map[string]models.Scrum)
		s.teams = make(map[string]models.Team)
		return nil
	}

	var doc fileData
	switch s.format {
	case formatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to unmarshal JSON from %s: %w", s.filePath, err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to unmarshal YAML from %s: %w", s.filePath, err)
		}
	case formatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to unmarshal TOML from %s: %w", s.filePath, err)
		}
	default:
		return fmt.Errorf("unsupported data format for loading: %s", s.format)
	}

	s.scrums = make(map[string]models.Scrum, len(doc.Scrums))
	for _, scrum := range doc.Scrums {
		s.scrums[scrum.ID] = scrum
	}
	s.teams = make(map[string]models.Team, len(doc.Teams))
	for _, team := range doc.Teams {
		s.teams[team.ID] = team
	}
	return nil
}

// saveToFileInternal writes records to file, then writes its checksum.
// The caller must hold the file lock.
func (s *FileScrumStore) saveToFileInternal() error {
	doc := fileData{
		Scrums: make([]models.Scrum, 0, len(s.scrums)),
		Teams:  make([]models.Team, 0, len(s.teams)),
	}
	for _, scrum := range s.scrums {
		doc.Scrums = append(doc.Scrums, scrum)
	}
	for _, team := range s.teams {
		doc.Teams = append(doc.Teams, team)
	}

	var marshaledData []byte
	var err error

	switch s.format {
	case formatJSON:
		marshaledData, err = json.MarshalIndent(doc, "", "  ")
	case formatYAML:
		marshaledData, err = yaml.Marshal(doc)
	case formatTOML:
		buf := new(bytes.Buffer)
		if encodeErr := toml.NewEncoder(buf).Encode(doc); encodeErr == nil {
			marshaledData = buf.Bytes()
		} else {
			err = fmt.Errorf("failed to marshal TOML: %w", encodeErr)
		}
	default:
		return fmt.Errorf("unsupported data format for saving: %s", s.format)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal records to %s: %w", s.format, err)
	}

	tempFilePath := s.filePath + ".tmp"
	checksumFilePath := s.filePath + checksumSuffix
	tempChecksumFilePath := checksumFilePath + ".tmp"

	defer func() { _ = os.Remove(tempFilePath) }()
	defer func() { _ = os.Remove(tempChecksumFilePath) }()

	if err := os.WriteFile(tempFilePath, marshaledData, 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary data file %s: %w", tempFilePath, err)
	}

	actualChecksum := calculateChecksum(marshaledData)
	if err := os.WriteFile(tempChecksumFilePath, []byte(actualChecksum), 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary checksum file %s: %w", tempChecksumFilePath, err)
	}

	if err := os.Rename(tempFilePath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temporary data file %s to %s: %w", tempFilePath, s.filePath, err)
	}
	if err := os.Rename(tempChecksumFilePath, checksumFilePath); err != nil {
		return fmt.Errorf("CRITICAL: data file %s updated, but failed to update checksum file %s: %w - store may be inconsistent", s.filePath, checksumFilePath, err)
	}

	return nil
}

// generateID creates a new universally unique identifier string.
func generateID() string {
	return uuid.NewString()
}

// withLock serializes a mutation: lock, reload from disk, mutate, save.
func (s *FileScrumStore) withLock(fn func() error) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock data file: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadFromFileInternal(); err != nil {
		return fmt.Errorf("failed to reload records: %w", err)
	}
	return fn()
}

// CreateScrum adds a new scrum to the store, filling in ID and timestamps.
func (s *FileScrumStore) CreateScrum(scrum models.Scrum) (models.Scrum, error) {
	err := s.withLock(func() error {
		if scrum.ID == "" {
			scrum.ID = generateID()
		} else if _, exists := s.scrums[scrum.ID]; exists {
			return fmt.Errorf("scrum with ID '%s' already exists", scrum.ID)
		}

		now := time.Now().UTC()
		scrum.CreatedAt = now
		scrum.UpdatedAt = now
		if scrum.Status == "" {
			scrum.Status = models.StatusNotStarted
		}

		if err := models.ValidateStruct(scrum); err != nil {
			return fmt.Errorf("validation failed for new scrum: %w", err)
		}

		s.scrums[scrum.ID] = scrum
		return s.saveToFileInternal()
	})
	if err != nil {
		return models.Scrum{}, err
	}
	return scrum, nil
}

// GetScrum retrieves a scrum by ID.
func (s *FileScrumStore) GetScrum(id string) (models.Scrum, error) {
	var scrum models.Scrum
	err := s.withLock(func() error {
		found, ok := s.scrums[id]
		if !ok {
			return fmt.Errorf("scrum with ID '%s': %w", id, ErrScrumNotFound)
		}
		scrum = found
		return nil
	})
	return scrum, err
}

// UpdateScrum applies the given field updates to a scheduled scrum.
// Unknown keys are rejected so callers notice typos instead of silently
// losing edits.
func (s *FileScrumStore) UpdateScrum(id string, updates map[string]interface{}) (models.Scrum, error) {
	var updated models.Scrum
	err := s.withLock(func() error {
		scrum, ok := s.scrums[id]
		if !ok {
			return fmt.Errorf("scrum with ID '%s': %w", id, ErrScrumNotFound)
		}

		for key, value := range updates {
			if err := applyScrumUpdate(&scrum, key, value); err != nil {
				return err
			}
		}
		scrum.UpdatedAt = time.Now().UTC()

		if err := models.ValidateStruct(scrum); err != nil {
			return fmt.Errorf("validation failed for updated scrum: %w", err)
		}

		s.scrums[id] = scrum
		updated = scrum
		return s.saveToFileInternal()
	})
	if err != nil {
		return models.Scrum{}, err
	}
	return updated, nil
}

// applyScrumUpdate sets one field from a loosely typed update value.
// Numeric values arrive as float64 when decoded from JSON.
func applyScrumUpdate(scrum *models.Scrum, key string, value interface{}) error {
	switch key {
	case "title":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for 'title': expected string")
		}
		scrum.Title = v
	case "description":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for 'description': expected string")
		}
		scrum.Description = v
	case "notes":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for 'notes': expected string")
		}
		scrum.Notes = v
	case "teamId":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for 'teamId': expected string")
		}
		scrum.TeamID = v
	case "recurring":
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for 'recurring': expected string")
		}
		scrum.Recurring = models.Recurrence(v)
	case "durationMinutes":
		v, err := asInt(value)
		if err != nil {
			return fmt.Errorf("invalid type for 'durationMinutes': %w", err)
		}
		scrum.DurationMinutes = v
	case "timePerSpeakerSeconds":
		v, err := asInt(value)
		if err != nil {
			return fmt.Errorf("invalid type for 'timePerSpeakerSeconds': %w", err)
		}
		scrum.TimePerSpeakerSecs = v
	case "scheduledAt":
		switch v := value.(type) {
		case time.Time:
			scrum.ScheduledAt = v
		case string:
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return fmt.Errorf("invalid value for 'scheduledAt': %w", err)
			}
			scrum.ScheduledAt = parsed
		default:
			return fmt.Errorf("invalid type for 'scheduledAt': expected time.Time or RFC3339 string")
		}
	default:
		return fmt.Errorf("unknown or immutable scrum field: %s", key)
	}
	return nil
}

func asInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}

// DeleteScrum removes a scrum from the store.
func (s *FileScrumStore) DeleteScrum(id string) error {
	return s.withLock(func() error {
		if _, ok := s.scrums[id]; !ok {
			return fmt.Errorf("scrum with ID '%s': %w", id, ErrScrumNotFound)
		}
		delete(s.scrums, id)
		return s.saveToFileInternal()
	})
}

// ListScrums retrieves scrums, optionally filtered and sorted.
func (s *FileScrumStore) ListScrums(filterFn func(models.Scrum) bool, sortFn func([]models.Scrum) []models.Scrum) ([]models.Scrum, error) {
	var result []models.Scrum
	err := s.withLock(func() error {
		for _, scrum := range s.scrums {
			if filterFn == nil || filterFn(scrum) {
				result = append(result, scrum)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if sortFn != nil {
		result = sortFn(result)
	}
	return result, nil
}

// MarkInProgress flips a scrum to IN_PROGRESS when its live meeting starts.
func (s *FileScrumStore) MarkInProgress(id string) (models.Scrum, error) {
	var updated models.Scrum
	err := s.withLock(func() error {
		scrum, ok := s.scrums[id]
		if !ok {
			return fmt.Errorf("scrum with ID '%s': %w", id, ErrScrumNotFound)
		}
		if scrum.Status == models.StatusFinished {
			return fmt.Errorf("scrum '%s' is already finished", id)
		}
		scrum.Status = models.StatusInProgress
		scrum.UpdatedAt = time.Now().UTC()
		s.scrums[id] = scrum
		updated = scrum
		return s.saveToFileInternal()
	})
	if err != nil {
		return models.Scrum{}, err
	}
	return updated, nil
}

// FinalizeScrum merges a finished meeting's result into the record and
// flips the status to FINISHED. The live rotation state is discarded; only
// the accumulated output survives.
func (s *FileScrumStore) FinalizeScrum(id string, result FinishedMeeting) (models.Scrum, error) {
	var updated models.Scrum
	err := s.withLock(func() error {
		scrum, ok := s.scrums[id]
		if !ok {
			return fmt.Errorf("scrum with ID '%s': %w", id, ErrScrumNotFound)
		}
		scrum.Status = models.StatusFinished
		scrum.Transcript = result.Transcript
		scrum.Summary = result.Summary
		scrum.TalkTimes = result.TalkTimes
		scrum.ActionItems = result.ActionItems
		scrum.Notes = result.Notes
		scrum.UpdatedAt = time.Now().UTC()
		s.scrums[id] = scrum
		updated = scrum
		return s.saveToFileInternal()
	})
	if err != nil {
		return models.Scrum{}, err
	}
	return updated, nil
}

// ToggleActionItem flips the completed flag of the action item at index.
func (s *FileScrumStore) ToggleActionItem(id string, index int) (models.Scrum, error) {
	var updated models.Scrum
	err := s.withLock(func() error {
		scrum, ok := s.scrums[id]
		if !ok {
			return fmt.Errorf("scrum with ID '%s': %w", id, ErrScrumNotFound)
		}
		if index < 0 || index >= len(scrum.ActionItems) {
			return fmt.Errorf("action item index %d out of range for scrum '%s'", index, id)
		}
		items := make([]models.ActionItem, len(scrum.ActionItems))
		copy(items, scrum.ActionItems)
		items[index].Completed = !items[index].Completed
		scrum.ActionItems = items
		scrum.UpdatedAt = time.Now().UTC()
		s.scrums[id] = scrum
		updated = scrum
		return s.saveToFileInternal()
	})
	if err != nil {
		return models.Scrum{}, err
	}
	return updated, nil
}

// AddComment appends a comment to a scrum's discussion thread.
func (s *FileScrumStore) AddComment(id string, comment models.Comment) (models.Scrum, error) {
	var updated models.Scrum
	err := s.withLock(func() error {
		scrum, ok := s.scrums[id]
		if !ok {
			return fmt.Errorf("scrum with ID '%s': %w", id, ErrScrumNotFound)
		}
		if comment.CreatedAt.IsZero() {
			comment.CreatedAt = time.Now().UTC()
		}
		scrum.Comments = append(scrum.Comments, comment)
		scrum.UpdatedAt = time.Now().UTC()
		s.scrums[id] = scrum
		updated = scrum
		return s.saveToFileInternal()
	})
	if err != nil {
		return models.Scrum{}, err
	}
	return updated, nil
}

// CreateTeam adds a new team to the store.
func (s *FileScrumStore) CreateTeam(team models.Team) (models.Team, error) {
	err := s.withLock(func() error {
		if team.ID == "" {
			team.ID = generateID()
		} else if _, exists := s.teams[team.ID]; exists {
			return fmt.Errorf("team with ID '%s' already exists", team.ID)
		}
		if err := models.ValidateStruct(team); err != nil {
			return fmt.Errorf("validation failed for new team: %w", err)
		}
		s.teams[team.ID] = team
		return s.saveToFileInternal()
	})
	if err != nil {
		return models.Team{}, err
	}
	return team, nil
}

// GetTeam retrieves a team by ID.
func (s *FileScrumStore) GetTeam(id string) (models.Team, error) {
	var team models.Team
	err := s.withLock(func() error {
		found, ok := s.teams[id]
		if !ok {
			return fmt.Errorf("team with ID '%s': %w", id, ErrTeamNotFound)
		}
		team = found
		return nil
	})
	return team, err
}

// ListTeams retrieves all teams.
func (s *FileScrumStore) ListTeams() ([]models.Team, error) {
	var result []models.Team
	err := s.withLock(func() error {
		for _, team := range s.teams {
			result = append(result, team)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTeam removes a team from the store.
func (s *FileScrumStore) DeleteTeam(id string) error {
	return s.withLock(func() error {
		if _, ok := s.teams[id]; !ok {
			return fmt.Errorf("team with ID '%s': %w", id, ErrTeamNotFound)
		}
		delete(s.teams, id)
		return s.saveToFileInternal()
	})
}

// Close releases the file lock.
func (s *FileScrumStore) Close() error {
	if s.flk != nil {
		return s.flk.Unlock()
	}
	return nil
}
