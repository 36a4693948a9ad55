// Package output serializes a leaderboard as the JSON artifact.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
)

// Write encodes lb as indented JSON to w.
func Write(w io.Writer, lb *domain.Leaderboard) error {
	jsonData, err := json.MarshalIndent(lb, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard to JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')
	if _, err := w.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write leaderboard: %w", err)
	}
	return nil
}

// WriteFile writes lb to path. The file is written to a temporary sibling
// first and renamed into place, so readers never see a partial artifact.
func WriteFile(path string, lb *domain.Leaderboard) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, lb); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set output file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}
