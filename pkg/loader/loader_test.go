package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/rule"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFile_AllFormatsAgree(t *testing.T) {
	for _, name := range []string{"users.json", "users.yaml", "users.cue"} {
		t.Run(name, func(t *testing.T) {
			file, err := ReadFile(filepath.Join("testdata", name))
			require.NoError(t, err)

			assert.Equal(t, "1", file.Version)
			assert.Equal(t, "users", file.Name)
			require.Len(t, file.Suites, 1)

			s := file.Suites[0]
			assert.Equal(t, "users", s.Name)
			assert.Equal(t, contract.Parallel(2), s.Concurrency)
			assert.Equal(t, int64(5000), s.BudgetMillis)

			require.Len(t, s.Cases, 1)
			tc := s.Cases[0]
			assert.Equal(t, "get_user", tc.Name)
			assert.Equal(t, "/users/{id}", tc.Endpoint.Path)
			assert.Equal(t, map[string]string{"id": "5"}, tc.Endpoint.PathParams)
			require.Len(t, tc.Rules, 2)
			assert.Equal(t, rule.StatusEquals(200), tc.Rules[0])
			assert.Equal(t, rule.TypeFieldEquals, tc.Rules[1].Type)
			assert.True(t, rule.ValuesEqual(5, tc.Rules[1].Value))

			expanded := s.Expanded()
			require.Len(t, expanded, 3)
			assert.Equal(t, "get_user_by_id[1]", expanded[1].Name)
			assert.Equal(t, "get_user_by_id[2]", expanded[2].Name)
			assert.Equal(t, "2", expanded[2].Endpoint.PathParams["id"])

			assert.NoError(t, contract.Validate(s, rule.NewEngine()))
		})
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"json", `{"version":"1","suites":[],"suitez":[]}`},
		{"yaml", "version: \"1\"\nsuites: []\nsuitez: []\n"},
		{"cue", "version: \"1\"\nsuites: []\nsuitez: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("suite."+tt.name, []byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "suitez")
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		wantErr string
	}{
		{"bad json", "s.json", `{invalid`, "invalid JSON"},
		{"trailing json", "s.json", `{"version":"1"} {}`, "trailing data"},
		{"bad yaml", "s.yaml", "suites: [", "invalid YAML"},
		{"empty yaml", "s.yml", "", "empty document"},
		{"bad cue", "s.cue", "version: ", "invalid CUE"},
		{"incomplete cue", "s.cue", "version: string\nsuites: []\n", "invalid CUE"},
		{"unknown extension", "s.toml", "", "unsupported suite file extension"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.file, []byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsSuiteFile(t *testing.T) {
	assert.True(t, IsSuiteFile("a.json"))
	assert.True(t, IsSuiteFile("a.YAML"))
	assert.True(t, IsSuiteFile("dir/a.yml"))
	assert.True(t, IsSuiteFile("a.cue"))
	assert.False(t, IsSuiteFile("a.txt"))
	assert.False(t, IsSuiteFile("README"))
}

func TestCatalog_LoadFile(t *testing.T) {
	c := New()
	require.NoError(t, c.LoadFile("testdata/users.yaml"))
	assert.Equal(t, 1, c.Count())

	s, ok := c.Get("users")
	assert.True(t, ok)
	assert.Len(t, s.Cases, 1)
	assert.Equal(t, []string{"testdata/users.yaml"}, c.Sources())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCatalog_DuplicateAcrossFiles(t *testing.T) {
	c := New()
	require.NoError(t, c.LoadFile("testdata/users.yaml"))

	err := c.LoadFile("testdata/users.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate suite "users"`)
	assert.Contains(t, err.Error(), "first defined in testdata/users.yaml")
	assert.Equal(t, 1, c.Count())
}

func TestCatalog_DuplicateWithinFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.json",
		`{"version":"1","suites":[{"name":"a"},{"name":"b"},{"name":"a"}]}`)

	c := New()
	err := c.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate suite "a"`)
	assert.Zero(t, c.Count())
}

func TestCatalog_MissingName(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "anon.yaml", "version: \"1\"\nsuites:\n  - cases: []\n")

	err := New().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suite at index 0")
}

func TestCatalog_UnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "v2.json", `{"version":"2","suites":[]}`)

	err := New().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported version "2"`)
}

func TestCatalog_LoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "version: \"1\"\nsuites:\n  - name: second\n")
	writeFile(t, dir, "a.json", `{"version":"1","suites":[{"name":"first"}]}`)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
	writeFile(t, filepath.Join(dir, "nested"), "c.json", `{"version":"1","suites":[{"name":"nested"}]}`)

	c := New()
	require.NoError(t, c.LoadDir(dir))

	var names []string
	for _, s := range c.All() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"first", "second"}, names)
	assert.Len(t, c.Sources(), 2)
}

func TestCatalog_LoadDir_Missing(t *testing.T) {
	err := New().LoadDir("/nonexistent/suites")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read suite directory")
}

func TestCatalog_LoadAndSelect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extra.json", `{"version":"1","suites":[{"name":"extra"}]}`)

	c := New()
	require.NoError(t, c.Load("testdata/users.cue", dir))
	assert.Equal(t, 2, c.Count())

	selected, err := c.Select("extra", "users")
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "extra", selected[0].Name)
	assert.Equal(t, "users", selected[1].Name)

	all, err := c.Select()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = c.Select("nope")
	assert.Error(t, err)

	assert.Error(t, c.Load("/nonexistent"))
}

func TestBundledSuites(t *testing.T) {
	path := filepath.Join("..", "..", "suites", "jsonplaceholder.yaml")
	assert.Empty(t, ValidateFile(path, nil))

	c := New()
	require.NoError(t, c.LoadFile(path))
	assert.Equal(t, 2, c.Count())

	users, ok := c.Get("users")
	require.True(t, ok)
	assert.Len(t, users.Expanded(), 5)

	byName := map[string]contract.TestCase{}
	for _, tc := range users.Cases {
		byName[tc.Name] = tc
	}
	var timeBound float64
	for _, d := range byName["get_user"].Rules {
		if d.Type == rule.TypeResponseTimeUnder {
			timeBound = d.Millis
		}
	}
	assert.Equal(t, float64(1000), timeBound)

	body, ok := byName["update_user"].Endpoint.Body.(map[string]any)
	require.True(t, ok, "update_user body is %T", byName["update_user"].Endpoint.Body)
	assert.NotContains(t, body, "id")
	assert.Equal(t, "Updated User", body["name"])

	concurrent, ok := c.Get("users_concurrent")
	require.True(t, ok)
	assert.Equal(t, contract.Parallel(5), concurrent.Concurrency)
	assert.Equal(t, int64(5000), concurrent.BudgetMillis)

	cases := concurrent.Expanded()
	require.Len(t, cases, 5)
	assert.Equal(t, "get_user[3]", cases[2].Name)
	assert.Equal(t, "3", cases[2].Endpoint.PathParams["id"])
}
