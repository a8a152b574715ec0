// Package journal appends one compressed JSON line per client event, in one
// file per race per day under <game folder>/journal.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	KindAbsorb          = "absorb"
	KindRestoreFallback = "restore_fallback"
	KindOrders          = "orders"
	KindSave            = "save"
)

type Entry struct {
	Time     string         `json:"time"`
	Kind     string         `json:"kind"`
	Race     string         `json:"race"`
	TurnYear int            `json:"turn_year"`
	Detail   map[string]any `json:"detail,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// JSONLZstdWriter appends JSON lines to zstd files, switching file when the
// UTC day changes. Each line is its own zstd frame, so a run that exits
// without Close leaves a file the next run can append to.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	curDay string
	f      *os.File
	enc    *zstd.Encoder
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	err := w.closeFile()
	if w.enc != nil {
		_ = w.enc.Close()
		w.enc = nil
	}
	return err
}

func (w *JSONLZstdWriter) Write(v any) error {
	day := w.now().UTC().Format("2006-01-02")
	if day != w.curDay {
		if err := w.rotate(day); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := w.f.Write(w.enc.EncodeAll(b, nil)); err != nil {
		return err
	}
	return nil
}

func (w *JSONLZstdWriter) rotate(day string) error {
	if err := w.closeFile(); err != nil {
		return err
	}
	if w.enc == nil {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return err
		}
		w.enc = enc
	}
	path := w.PathForDay(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	w.f = f
	w.curDay = day
	return nil
}

func (w *JSONLZstdWriter) closeFile() error {
	var err error
	if w.f != nil {
		err = w.f.Close()
		w.f = nil
	}
	w.curDay = ""
	return err
}

func (w *JSONLZstdWriter) PathForDay(day string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, day))
}

// Journal records the events of one race.
type Journal struct {
	race string
	w    *JSONLZstdWriter
}

func Open(gameFolder, race string) *Journal {
	return &Journal{race: race, w: NewJSONLZstdWriter(filepath.Join(gameFolder, "journal"), race)}
}

func (j *Journal) Record(kind string, turnYear int, detail map[string]any, err error) error {
	e := Entry{
		Time:     j.w.now().UTC().Format(time.RFC3339Nano),
		Kind:     kind,
		Race:     j.race,
		TurnYear: turnYear,
		Detail:   detail,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return j.w.Write(e)
}

func (j *Journal) Close() error { return j.w.Close() }

// ReadFile decodes every entry of one journal file, one zstd frame after
// another.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
