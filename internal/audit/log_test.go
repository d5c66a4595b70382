package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/gdprmask/internal/types"
)

func sampleResults() []types.Result {
	return []types.Result{
		{
			OriginalText:     "Ana Horvat, ana@x.si",
			TotalMasked:      2,
			MaskedEntities:   []types.MaskedEntity{{Original: "Ana Horvat", Type: types.PER}, {Original: "ana@x.si", Type: types.Email}},
			DetectionMethods: map[types.Method]int{types.MethodNER: 1, types.MethodPattern: 1},
			PrivacyRisk:      types.RiskMed,
		},
		{
			OriginalText:     "EMŠO 0101990500003",
			TotalMasked:      1,
			MaskedEntities:   []types.MaskedEntity{{Original: "0101990500003", Type: types.PersonalID}},
			DetectionMethods: map[types.Method]int{types.MethodRegional: 1},
			PrivacyRisk:      types.RiskHigh,
		},
	}
}

func TestCreateRunRecord(t *testing.T) {
	rec := CreateRunRecord("batch", types.Slovenian, sampleResults(), 1, 2*time.Second, []string{"LOC"})
	assert.Equal(t, 3, rec.Inputs)
	assert.Equal(t, 1, rec.Failed)
	assert.Equal(t, 3, rec.TotalMasked)
	assert.Equal(t, 38, rec.Characters)
	assert.Equal(t, types.RiskHigh, rec.PrivacyRisk)
	assert.Equal(t, map[types.EntityType]int{types.PER: 1, types.Email: 1, types.PersonalID: 1}, rec.EntityCounts)
	assert.Equal(t, 1, rec.MethodCounts[types.MethodRegional])
	assert.NotEmpty(t, rec.InputDigest)
	assert.Equal(t, rec.InputDigest, CreateRunRecord("batch", types.Slovenian, sampleResults(), 0, 0, nil).InputDigest)

	empty := CreateRunRecord("anonymize", types.Croatian, nil, 0, 0, nil)
	assert.Equal(t, types.RiskLow, empty.PrivacyRisk)
}

func TestLogRunNeverStoresText(t *testing.T) {
	dir := t.TempDir()
	log := NewAuditLog(dir)
	require.NoError(t, log.LogRun(CreateRunRecord("anonymize", types.Slovenian, sampleResults(), 0, time.Second, nil)))

	b, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	for _, secret := range []string{"Ana Horvat", "ana@x.si", "0101990500003"} {
		assert.False(t, strings.Contains(string(b), secret), "audit log leaked %q", secret)
	}
	info, err := os.Stat(log.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestHistoryAndDelete(t *testing.T) {
	dir := t.TempDir()
	log := NewAuditLog(dir)

	_, err := log.LoadHistory()
	assert.Error(t, err)

	for _, cmd := range []string{"first", "second", "third"} {
		require.NoError(t, log.LogRun(RunRecord{Command: cmd}))
	}
	records, err := log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third", records[0].Command)
	assert.NotEmpty(t, records[0].RunID)
	assert.NotEqual(t, records[0].RunID, records[1].RunID)

	require.NoError(t, log.DeleteRecord(1))
	records, err = log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].Command)
	assert.Equal(t, "first", records[1].Command)

	assert.Error(t, log.DeleteRecord(5))
}

func TestNewAuditLog_PrefersGitDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	assert.Equal(t, filepath.Join(dir, ".git", "gdprmask_audit.jsonl"), NewAuditLog(dir).Path())
}
