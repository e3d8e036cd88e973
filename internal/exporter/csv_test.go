package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumocli/internal/config"
)

// setupTestEnv returns a writer rooted at a fresh data directory
func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dataDir := t.TempDir()
	return NewCSVWriter(&config.Paths{DataDir: dataDir}), dataDir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestNewCSVWriter(t *testing.T) {
	paths := &config.Paths{}
	writer := NewCSVWriter(paths)

	assert.NotNil(t, writer)
	assert.Equal(t, paths, writer.paths)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, dataDir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		initial  *WriteOptions
		options  WriteOptions
		validate func(t *testing.T, filePath string)
	}{
		{
			name:     "basic write with headers",
			filePath: "basic.csv",
			options: WriteOptions{
				Headers: []string{"identity", "display_name", "rank_label"},
				Records: [][]string{
					{"3842", "Hoshoryu", "Y"},
					{"3761", "Kotozakura", "O"},
				},
			},
			validate: func(t *testing.T, filePath string) {
				lines := readLines(t, filePath)
				assert.Equal(t, []string{"identity,display_name,rank_label", "3842,Hoshoryu,Y", "3761,Kotozakura,O"}, lines)
			},
		},
		{
			name:     "write without headers",
			filePath: "no_headers.csv",
			options: WriteOptions{
				Records: [][]string{{"a", "b"}, {"c", "d"}},
			},
			validate: func(t *testing.T, filePath string) {
				assert.Equal(t, []string{"a,b", "c,d"}, readLines(t, filePath))
			},
		},
		{
			name:     "append skips headers",
			filePath: "append.csv",
			initial: &WriteOptions{
				Headers: []string{"identity", "side"},
				Records: [][]string{{"1", "e"}},
			},
			options: WriteOptions{
				Headers: []string{"identity", "side"},
				Records: [][]string{{"2", "w"}},
				Append:  true,
			},
			validate: func(t *testing.T, filePath string) {
				assert.Equal(t, []string{"identity,side", "1,e", "2,w"}, readLines(t, filePath))
			},
		},
		{
			name:     "truncates previous content",
			filePath: "truncate.csv",
			initial: &WriteOptions{
				Headers: []string{"old"},
				Records: [][]string{{"1"}, {"2"}, {"3"}},
			},
			options: WriteOptions{
				Headers: []string{"new"},
				Records: [][]string{{"9"}},
			},
			validate: func(t *testing.T, filePath string) {
				assert.Equal(t, []string{"new", "9"}, readLines(t, filePath))
			},
		},
		{
			name:     "empty records",
			filePath: filepath.Join("nested", "empty.csv"),
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, filePath string) {
				assert.Equal(t, []string{"Col1,Col2"}, readLines(t, filePath))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.initial != nil {
				require.NoError(t, writer.WriteCSV(tt.filePath, *tt.initial))
			}
			require.NoError(t, writer.WriteCSV(tt.filePath, tt.options))
			tt.validate(t, filepath.Join(dataDir, tt.filePath))
		})
	}
}

func TestCSVWriter_ReadCSV(t *testing.T) {
	writer, dataDir := setupTestEnv(t)

	headers := []string{"identity", "full_name", "real_name"}
	records := [][]string{
		{"1", "Hoshoryu Tomokatsu", "SUGARAGCHAA, Byambasuren"},
		{"2", `Name with "quotes"`, "line\nbreak"},
	}
	require.NoError(t, writer.WriteSimpleCSV("special.csv", headers, records))

	got, err := writer.ReadCSV("special.csv")
	require.NoError(t, err)
	assert.Equal(t, append([][]string{headers}, records...), got)

	// absolute paths bypass the data directory
	got, err = writer.ReadCSV(filepath.Join(dataDir, "special.csv"))
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = writer.ReadCSV("missing.csv")
	assert.Error(t, err)
}

func TestCSVWriter_ReadCSVRaggedRows(t *testing.T) {
	writer, dataDir := setupTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "ragged.csv"), []byte("a,b,c\n1,2\n"), 0644))

	got, err := writer.ReadCSV("ragged.csv")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2"}}, got)
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	writer, dataDir := setupTestEnv(t)
	abs := filepath.Join(t.TempDir(), "file.csv")

	assert.Equal(t, abs, writer.resolvePath(abs))
	assert.Equal(t, filepath.Join(dataDir, "roster.csv"), writer.resolvePath("roster.csv"))
	assert.Equal(t, filepath.Join(dataDir, "out", "x.csv"), writer.resolvePath(filepath.Join("out", "x.csv")))

	var bare CSVWriter
	assert.Equal(t, "relative.csv", bare.resolvePath("relative.csv"))
}

func TestCSVWriter_SpecialCharacters(t *testing.T) {
	writer, dataDir := setupTestEnv(t)

	headers := []string{"Name", "Description"}
	records := [][]string{
		{"Kotozakura, Masakatsu", `with "quotes"`},
		{"照ノ富士", "伊勢ヶ濱"},
	}
	require.NoError(t, writer.WriteCSV("special_chars.csv", WriteOptions{Headers: headers, Records: records}))

	file, err := os.Open(filepath.Join(dataDir, "special_chars.csv"))
	require.NoError(t, err)
	defer file.Close()

	all, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, append([][]string{headers}, records...), all)
}

func TestCSVWriter_ErrorScenarios(t *testing.T) {
	writer, dataDir := setupTestEnv(t)

	// a regular file where a directory is expected
	blocker := filepath.Join(dataDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := writer.WriteCSV(filepath.Join("blocker", "test.csv"), WriteOptions{Headers: []string{"Test"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to")
}

// BenchmarkCSVWriter_WriteCSV tests CSV writing performance
func BenchmarkCSVWriter_WriteCSV(b *testing.B) {
	writer := NewCSVWriter(&config.Paths{DataDir: b.TempDir()})

	headers := []string{"identity", "display_name", "rank_label", "position", "side"}
	var records [][]string
	for i := 0; i < 1000; i++ {
		records = append(records, []string{"1000", "Name", "Ms", "12", "e"})
	}
	options := WriteOptions{Headers: headers, Records: records}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		require.NoError(b, writer.WriteCSV("benchmark.csv", options))
	}
}
