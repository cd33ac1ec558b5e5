package cellset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack"

	"github.com/kass/go-geocode/pkg/metric"
	"github.com/kass/go-geocode/pkg/models"
)

const snapshotVersion = 1

// snapshot is the serializable form of a cell set
type snapshot struct {
	Version int           `msgpack:"version"`
	Cells   []models.Cell `msgpack:"cells"`
}

// SaveToFile writes the set as msgpack
func (s *CellSet) SaveToFile(filename string) error {
	codes := s.Cells()
	data := snapshot{
		Version: snapshotVersion,
		Cells:   make([]models.Cell, len(codes)),
	}
	for i, g := range codes {
		data.Cells[i] = models.NewCell(g)
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := msgpack.NewEncoder(file).Encode(&data); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	cellLog.Infof("saved %d cells to %s", len(codes), filename)
	return file.Close()
}

// LoadFromFile replaces the contents of the set with a saved snapshot.
// Every cell is validated before anything is replaced.
func (s *CellSet) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data snapshot
	if err := msgpack.NewDecoder(file).Decode(&data); err != nil {
		metric.ErrorCnt.WithLabelValues("cellset", "snapshot_decode").Inc()
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if data.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", data.Version)
	}

	loaded, err := New()
	if err != nil {
		return err
	}
	for _, cell := range data.Cells {
		g, err := cell.GeoCode()
		if err != nil {
			metric.ErrorCnt.WithLabelValues("cellset", "snapshot_cell").Inc()
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		if err := loaded.Add(g); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.tree, s.cells = loaded.tree, loaded.cells
	s.mu.Unlock()

	cellLog.Infof("loaded %d cells from %s", len(data.Cells), filename)
	return nil
}
