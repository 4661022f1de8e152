package deploy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudops/cloud-console-tool/internal/models"
)

// Store persists the deployment registry to a JSON file under the cache
// directory so the audit trail survives across console runs. Records are
// appended and mutated, never deleted.
type Store struct {
	path string
}

// NewStore creates a store writing to registry.json under baseDir
func NewStore(baseDir string) *Store {
	return &Store{path: filepath.Join(baseDir, "registry.json")}
}

type storeFile struct {
	Deployments []models.Deployment `json:"deployments"`
	SavedAt     time.Time           `json:"saved_at"`
}

// Load reads all persisted deployment records. A missing file is an empty
// registry, not an error.
func (s *Store) Load() ([]models.Deployment, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Deployments, nil
}

// Save writes all deployment records
func (s *Store) Save(deployments []models.Deployment) error {
	data, err := json.MarshalIndent(storeFile{Deployments: deployments, SavedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
