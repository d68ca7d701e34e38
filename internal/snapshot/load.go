package snapshot

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/dzenfone819-debug/neko-finance/internal/errs"
	"github.com/dzenfone819-debug/neko-finance/internal/models"
)

// Load reads and parses a backup document from r.
func Load(r io.Reader) (*models.Snapshot, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, errs.NewMalformedBackupError("failed to read backup", err)
	}
	return Parse(raw)
}

// Parse validates raw and returns the decoded snapshot. Any failure is a
// *errs.MalformedBackupError and no partial snapshot is returned. Goals
// and limits absent from older backups come back empty.
func Parse(raw []byte) (*models.Snapshot, error) {
	if len(raw) > MaxSize {
		return nil, errs.NewMalformedBackupError("backup exceeds maximum size", nil)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, errs.NewMalformedBackupError("backup is not a JSON object", err)
	}
	if top == nil {
		return nil, errs.NewMalformedBackupError("backup is not a JSON object", nil)
	}

	version, err := parseVersion(top["version"])
	if err != nil {
		return nil, err
	}

	rawData := bytes.TrimSpace(top["data"])
	if len(rawData) == 0 || bytes.Equal(rawData, []byte("null")) {
		return nil, errs.NewMalformedBackupError("backup is missing data", nil)
	}
	if rawData[0] != '{' {
		return nil, errs.NewMalformedBackupError("backup data must be an object", nil)
	}

	var data models.SnapshotData
	if err := json.Unmarshal(rawData, &data); err != nil {
		return nil, errs.NewMalformedBackupError("backup data is invalid", err)
	}
	normalize(&data)

	// exportDate is informational; a missing or odd value is not fatal.
	var exportDate string
	_ = json.Unmarshal(top["exportDate"], &exportDate)

	return &models.Snapshot{
		Version:    version,
		ExportDate: exportDate,
		Data:       data,
	}, nil
}

func parseVersion(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errs.NewMalformedBackupError("backup is missing version", nil)
	}

	var version string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &version); err != nil {
			return "", errs.NewMalformedBackupError("backup version is invalid", err)
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", errs.NewMalformedBackupError("backup version must be a string", err)
		}
		version = n.String()
	}
	if version == "" {
		return "", errs.NewMalformedBackupError("backup is missing version", nil)
	}
	return version, nil
}
