package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"novaclient/internal/intel"
)

type TurnArchiveMeta struct {
	Race      string `json:"race"`
	TurnYear  int    `json:"turn_year"`
	Intel     string `json:"intel"`
	Stars     int    `json:"stars"`
	Fleets    int    `json:"fleets"`
	Designs   int    `json:"designs"`
	Messages  int    `json:"messages"`
	CreatedAt string `json:"created_at"`
}

// TurnDir is `gameFolder/archives/<race>/turn_<year>/`.
func TurnDir(gameFolder, race string, year int) string {
	return filepath.Join(gameFolder, "archives", race, fmt.Sprintf("turn_%04d", year))
}

// ArchiveTurn copies the intel file of a turn next to a meta.json describing
// it. Archiving the same turn twice overwrites the earlier copy.
func ArchiveTurn(gameFolder, race, intelPath string, snap *intel.Snapshot) (archivedPath string, err error) {
	if race == "" {
		return "", fmt.Errorf("archive: empty race name")
	}
	dir := TurnDir(gameFolder, race, snap.TurnYear)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, filepath.Base(intelPath))
	if err := copyFile(intelPath, dst); err != nil {
		return "", err
	}

	meta := TurnArchiveMeta{
		Race:      race,
		TurnYear:  snap.TurnYear,
		Intel:     filepath.Base(dst),
		Stars:     len(snap.Stars),
		Fleets:    len(snap.Fleets),
		Designs:   len(snap.Designs),
		Messages:  len(snap.Messages),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644); err != nil {
		return "", fmt.Errorf("archive meta: %w", err)
	}
	return dst, nil
}

func ReadMeta(dir string) (TurnArchiveMeta, error) {
	var m TurnArchiveMeta
	b, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
