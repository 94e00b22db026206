package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/fleetwatch/internal/model"
)

type jsonExport struct {
	ExportedAt string          `json:"exported_at"`
	QueueSize  int             `json:"queue_size"`
	Count      int             `json:"count"`
	Accounts   []model.Account `json:"accounts"`

	History map[string]model.HistoryPoint `json:"history,omitempty"`
}

// ToJSON writes the current fleet snapshot plus the cached fleet history.
func ToJSON(fleet *model.Fleet, history map[string]model.HistoryPoint, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		QueueSize:  fleet.QueueSize,
		Count:      len(fleet.Accounts),
		Accounts:   fleet.Accounts,
		History:    history,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
