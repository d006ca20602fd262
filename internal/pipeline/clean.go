package pipeline

import (
	"fmt"
	"os"

	"github.com/couchcryptid/body-trend-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/body-trend-etl/internal/domain"
)

// CleanResult describes what Clean did to a file.
type CleanResult struct {
	Changed      bool
	RemovedBytes int // original size minus rewritten size
	BackupPath   string
}

// Clean strips carriage returns from every key and string value of the JSON
// file at path and rewrites it in the pipeline's output format. A file that
// is already clean is left untouched. With backup set, the original bytes are
// first copied to path + ".bak".
func Clean(path string, backup bool) (CleanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CleanResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := jsonfile.DecodeValue(data)
	if err != nil {
		return CleanResult{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if !domain.ContainsCR(v) {
		return CleanResult{}, nil
	}

	var res CleanResult
	if backup {
		res.BackupPath = path + ".bak"
		if err := os.WriteFile(res.BackupPath, data, 0o644); err != nil {
			return CleanResult{}, fmt.Errorf("write backup %s: %w", res.BackupPath, err)
		}
	}

	out, err := jsonfile.Encode(domain.Sanitize(v))
	if err != nil {
		return CleanResult{}, fmt.Errorf("encode %s: %w", path, err)
	}
	if err := jsonfile.WriteFile(path, out); err != nil {
		return CleanResult{}, err
	}
	res.Changed = true
	res.RemovedBytes = len(data) - len(out)
	return res, nil
}
