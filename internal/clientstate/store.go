package clientstate

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"novaclient/internal/game"
)

const StateVersion = 1

// Header is the first line of a state blob. It is readable without decoding
// the body.
type Header struct {
	Version    int    `json:"version"`
	Race       string `json:"race"`
	GameFolder string `json:"game_folder"`
	TurnYear   int    `json:"turn_year"`
}

func StatePathFor(gameFolder, race string) string {
	return game.DefaultExtensions().StatePath(gameFolder, race)
}

// Save writes the whole state to StatePath. The previous blob is replaced
// only once the new one is fully on disk.
func (s *ClientState) Save() error {
	if s.StatePath == "" {
		return fmt.Errorf("%w: state path not set", ErrConfigurationMissing)
	}
	if err := WriteFile(s.StatePath, s); err != nil {
		return err
	}
	s.phase = Persisted
	return nil
}

func WriteFile(path string, s *ClientState) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(Header{
		Version:    StateVersion,
		Race:       s.RaceName,
		GameFolder: s.GameFolder,
		TurnYear:   s.TurnYear,
	})
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(s); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}

func openBlob(path string) (*os.File, *zstd.Decoder, *bufio.Reader, Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, h, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, nil, h, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err == nil {
		err = json.Unmarshal(line, &h)
	}
	if err == nil && h.Version != StateVersion {
		err = fmt.Errorf("unsupported version %d", h.Version)
	}
	if err != nil {
		dec.Close()
		f.Close()
		return nil, nil, nil, h, fmt.Errorf("%w: header: %v", ErrMalformedState, err)
	}
	return f, dec, br, h, nil
}

func ReadHeader(path string) (Header, error) {
	f, dec, _, h, err := openBlob(path)
	if err != nil {
		return h, err
	}
	dec.Close()
	f.Close()
	return h, nil
}

// ReadFile decodes a state blob. A missing file is reported as such; any
// other failure wraps ErrMalformedState.
func ReadFile(path string) (*ClientState, error) {
	f, dec, br, _, err := openBlob(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defer dec.Close()

	// Decode into a zero value: gob leaves fields absent from the stream
	// untouched, and false or zero values are never sent.
	var s ClientState
	if err := gob.NewDecoder(br).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: gob decode: %v", ErrMalformedState, err)
	}
	s.ensureCollections()
	return &s, nil
}

// Restore loads the saved state of race in gameFolder. It never fails: a
// missing or unreadable blob is reported to logger and replaced by a fresh
// state. The identity fields always carry the requested values.
func Restore(gameFolder, race string, logger *log.Logger) *ClientState {
	return restorePath(StatePathFor(gameFolder, race), gameFolder, race, logger)
}

func restorePath(path, gameFolder, race string, logger *log.Logger) *ClientState {
	s, err := ReadFile(path)
	var lost error
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			lost = err
		}
		if logger != nil {
			if lost == nil {
				logger.Printf("no saved state at %s, starting fresh", path)
			} else {
				logger.Printf("unable to read state file %s, race history will not be available: %v", path, err)
			}
		}
		s = New()
	}
	s.setIdentity(gameFolder, race, path)
	s.logger = logger
	s.restoreErr = lost
	return s
}

// RestoreError is the reason saved history was discarded by the last
// restore, or nil.
func (s *ClientState) RestoreError() error { return s.restoreErr }
