// Package audit keeps an append-only JSONL history of anonymization runs.
// Records carry counts, digests and risk levels only, never the text.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/redactyl/gdprmask/internal/types"
)

// FileName is the audit log written in the working directory.
const FileName = ".gdprmask_audit.jsonl"

// RunRecord describes one anonymize or batch invocation.
type RunRecord struct {
	Timestamp     time.Time                `json:"timestamp"`
	RunID         string                   `json:"run_id"`
	Command       string                   `json:"command"`
	Language      types.Language           `json:"language"`
	Inputs        int                      `json:"inputs"`
	Characters    int                      `json:"characters"`
	InputDigest   string                   `json:"input_digest"`
	TotalMasked   int                      `json:"total_entities_masked"`
	EntityCounts  map[types.EntityType]int `json:"entity_counts"`
	MethodCounts  map[types.Method]int     `json:"detection_methods"`
	PrivacyRisk   types.RiskLevel          `json:"privacy_risk"`
	Failed        int                      `json:"failed,omitempty"`
	Duration      string                   `json:"duration"`
	PreserveTypes []string                 `json:"preserve_types,omitempty"`
}

type AuditLog struct {
	logPath string
}

// NewAuditLog logs into dir, preferring dir/.git when it exists so the log
// is not committed by accident.
func NewAuditLog(dir string) *AuditLog {
	gitDir := filepath.Join(dir, ".git")
	logPath := filepath.Join(dir, FileName)
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "gdprmask_audit.jsonl")
	}
	return &AuditLog{logPath: logPath}
}

// Path returns the log file location.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns the records newest first. Reading stops at the first
// malformed line.
func (a *AuditLog) LoadHistory() ([]RunRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record RunRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// LogRun appends record, assigning a run ID when it has none.
func (a *AuditLog) LogRun(record RunRecord) error {
	if record.RunID == "" {
		record.RunID = uuid.NewString()
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index in LoadHistory order.
func (a *AuditLog) DeleteRecord(index int) error {
	records, err := a.LoadHistory()
	if err != nil {
		return err
	}

	if index < 0 || index >= len(records) {
		return fmt.Errorf("invalid index: %d", index)
	}

	records = append(records[:index], records[index+1:]...)

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	return nil
}

// CreateRunRecord summarizes results without copying any text. The input
// digest is an xxhash over the inputs so repeated runs can be correlated.
func CreateRunRecord(command string, lang types.Language, results []types.Result, failed int, duration time.Duration, preserve []string) RunRecord {
	rec := RunRecord{
		Timestamp:     time.Now(),
		Command:       command,
		Language:      lang,
		Inputs:        len(results) + failed,
		EntityCounts:  map[types.EntityType]int{},
		MethodCounts:  map[types.Method]int{},
		PrivacyRisk:   types.RiskLow,
		Failed:        failed,
		Duration:      duration.String(),
		PreserveTypes: preserve,
	}
	d := xxhash.New()
	for _, r := range results {
		_, _ = d.WriteString(r.OriginalText)
		_, _ = d.Write([]byte{0})
		rec.Characters += utf8.RuneCountInString(r.OriginalText)
		rec.TotalMasked += r.TotalMasked
		for _, me := range r.MaskedEntities {
			rec.EntityCounts[me.Type]++
		}
		for m, n := range r.DetectionMethods {
			rec.MethodCounts[m] += n
		}
		if r.PrivacyRisk.Rank() > rec.PrivacyRisk.Rank() {
			rec.PrivacyRisk = r.PrivacyRisk
		}
	}
	rec.InputDigest = strconv.FormatUint(d.Sum64(), 16)
	return rec
}
