package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/bmsview/internal/core"
	"github.com/JonMunkholm/bmsview/internal/engine"
)

const dataLog = "SerialNumber=PK-001\n" +
	"Sample,DateTime,Voltage,Current,CellVolt1,CellVolt2,SafetyStatus\n" +
	"1,2024-03-01 08:00:00,51000,2000,3300,3310,0\n" +
	"2,2024-03-01 08:00:30,51100,2100,3302,3309,0\n" +
	"3,2024-03-01 08:01:00,51200,2200,3301,3312,4\n"

const errorLog = "Time,LogCaption,Error Code,Error String\n" +
	"2024-03-01 08:00:00,Charge,12,Cell over voltage\n" +
	"2024-03-01 08:05:00,Charge,12,Cell over voltage\n" +
	"2024-03-01 08:09:00,Idle,7,Temperature sensor\n"

const junkLog = "hello\nworld\n"

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze_Text(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, filepath.Join(dir, "pack.csv"), dataLog)
	errs := writeFile(t, filepath.Join(dir, "errors.csv"), errorLog)

	out, err := run(t, "analyze", data, errs)
	require.NoError(t, err)

	assert.Contains(t, out, data+": data log, 3 rows, header at line 2\n")
	assert.Contains(t, out, "  metadata: SerialNumber=PK-001\n")
	assert.Contains(t, out, "  time axis: DateTime (comparable)\n")
	assert.Contains(t, out, "  flags: 1 checked, active: SafetyStatus\n")
	assert.Contains(t, out, errs+": error log, 3 rows, header at line 1\n")
	assert.Contains(t, out, "  errors: 12 x2, 7 x1 (total 3)\n")
}

func TestAnalyze_JSONWithGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "pack.csv"), dataLog)
	writeFile(t, filepath.Join(dir, "a", "b", "errors.csv"), errorLog)
	writeFile(t, filepath.Join(dir, "notes.txt"), junkLog)

	out, err := run(t, "analyze", filepath.Join(dir, "**", "*.csv"), "-o", "json", "--series", "--preview-rows", "1")
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)

	kinds := map[engine.Kind]*core.Report{}
	for _, fr := range reports {
		require.NotNil(t, fr.Report)
		kinds[fr.Report.Kind] = fr.Report
	}
	require.Contains(t, kinds, engine.KindData)
	require.Contains(t, kinds, engine.KindError)
	assert.Equal(t, core.SourceCLI, kinds[engine.KindData].Source)
	assert.Contains(t, kinds[engine.KindData].Series, engine.VoltsColumn)
	require.NotNil(t, kinds[engine.KindData].Preview)
	assert.True(t, kinds[engine.KindData].Preview.Truncated)
}

func TestAnalyze_Unrecognized(t *testing.T) {
	junk := writeFile(t, filepath.Join(t.TempDir(), "notes.txt"), junkLog)

	out, err := run(t, "analyze", junk)
	require.NoError(t, err)
	assert.Equal(t, junk+": unrecognized (File is not a recognized BMS log)\n", out)

	_, err = run(t, "analyze", "--strict", junk)
	assert.ErrorIs(t, err, errNotRecognized)
}

func TestAnalyze_FileTooLarge(t *testing.T) {
	t.Setenv("INGEST_MAX_FILE_SIZE", "10B")
	data := writeFile(t, filepath.Join(t.TempDir(), "pack.csv"), dataLog)

	out, err := run(t, "analyze", data)
	assert.ErrorIs(t, err, errAnalyzeFailed)
	assert.Contains(t, out, data+": error: ")
	assert.Contains(t, out, "(FILE001)")
}

func TestAnalyze_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "analyze", filepath.Join(dir, "missing.csv"))
	assert.ErrorContains(t, err, "read ")

	_, err = run(t, "analyze", filepath.Join(dir, "*.csv"))
	assert.ErrorContains(t, err, "no files match")

	_, err = run(t, "analyze", "-o", "yaml", filepath.Join(dir, "x.csv"))
	assert.ErrorContains(t, err, "invalid --output")

	_, err = run(t, "analyze")
	assert.Error(t, err)
}

func TestExpandPatterns_Dedupes(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.csv"), dataLog)
	writeFile(t, filepath.Join(dir, "b.csv"), dataLog)

	paths, err := expandPatterns([]string{a, filepath.Join(dir, "*.csv")})
	require.NoError(t, err)
	assert.Equal(t, []string{a, filepath.Join(dir, "b.csv")}, paths)

	_, err = expandPatterns([]string{filepath.Join(dir, "[")})
	assert.Error(t, err)
}

func TestIngest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pack.csv"), dataLog)
	writeFile(t, filepath.Join(dir, "notes.txt"), junkLog)

	out, err := run(t, "ingest", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "pack.csv")+": data log")
	assert.Contains(t, out, filepath.Join(dir, "notes.txt")+": unrecognized")

	assert.FileExists(t, filepath.Join(dir, core.DefaultProcessedDir, "pack.csv"))
	assert.FileExists(t, filepath.Join(dir, core.DefaultProcessedDir, "notes.txt"))
}
