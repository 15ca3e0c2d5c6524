package trainer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

const preferencesFileName = "ui_state.json"

type uiModelPersistenceData struct {
	LastUser string `json:"last_user"`
	Muted    bool   `json:"muted"`
}

type uiModelPersistence struct {
	mu       sync.Mutex
	filePath string
	data     uiModelPersistenceData
	logger   logrus.FieldLogger
}

func newUIModelPersistence(logger logrus.FieldLogger, dataDir string) *uiModelPersistence {
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		dataDir = filepath.Join(homeDir, ".academia")
	}
	p := &uiModelPersistence{
		filePath: filepath.Join(dataDir, preferencesFileName),
		logger:   logger,
	}
	p.load()
	return p
}

func (p *uiModelPersistence) getLastUser() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.LastUser
}

func (p *uiModelPersistence) setLastUser(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Debugf("UIModelPersistence: setLastUser -> %q", userID)
	p.data.LastUser = userID
	p.saveLocked()
}

func (p *uiModelPersistence) getMuted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.Muted
}

func (p *uiModelPersistence) setMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Debugf("UIModelPersistence: setMuted -> %v", muted)
	p.data.Muted = muted
	p.saveLocked()
}

func (p *uiModelPersistence) load() {
	p.data = uiModelPersistenceData{}
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		p.logger.Debugf("UIModelPersistence: load %s (no existing file)", p.filePath)
		return
	}
	if err := json.Unmarshal(raw, &p.data); err != nil {
		p.logger.Warnf("UIModelPersistence: load %s failed to parse: %v", p.filePath, err)
		p.data = uiModelPersistenceData{}
		return
	}
	p.logger.Debugf("UIModelPersistence: load %s -> %+v", p.filePath, p.data)
}

func (p *uiModelPersistence) saveLocked() {
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0o755); err != nil {
		p.logger.Errorf("UIModelPersistence: save mkdir failed: %v", err)
		return
	}
	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		p.logger.Errorf("UIModelPersistence: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(p.filePath, raw, 0o644); err != nil {
		p.logger.Errorf("UIModelPersistence: save %s failed: %v", p.filePath, err)
		return
	}
	p.logger.Debugf("UIModelPersistence: save %s -> %+v", p.filePath, p.data)
}
