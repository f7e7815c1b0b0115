package watchlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kabu/internal/domain"
)

var defaults = []string{"AAPL", "TSLA", "NVDA", "7203.T", "9984.T"}

func newJSONStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stock_list.json")
	s, err := NewStore(NewJSONFile(path), defaults, nil)
	require.NoError(t, err)
	return s, path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, path := newJSONStore(t)

	assert.Equal(t, []domain.Symbol{"AAPL", "TSLA", "NVDA", "7203.T", "9984.T"}, s.Symbols())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "defaults are not written until the first mutation")
}

func TestLoadEmptyPersistedListStaysEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock_list.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	s, err := NewStore(NewJSONFile(path), defaults, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Symbols())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock_list.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(NewJSONFile(path), defaults, nil)
	require.Error(t, err)
}

func TestLoadNormalizesAndDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock_list.json")
	require.NoError(t, os.WriteFile(path, []byte(`["aapl"," AAPL ","", "7203.t","MSFT"]`), 0o644))

	s, err := NewStore(NewJSONFile(path), defaults, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.Symbol{"AAPL", "7203.T", "MSFT"}, s.Symbols())
}

func TestAddPersists(t *testing.T) {
	s, path := newJSONStore(t)

	require.NoError(t, s.Add("msft"))
	assert.True(t, s.Contains("MSFT"))
	assert.Equal(t, 5, s.IndexOf("MSFT"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["AAPL","TSLA","NVDA","7203.T","9984.T","MSFT"]`, string(data))
}

func TestAddDuplicate(t *testing.T) {
	s, path := newJSONStore(t)

	err := s.Add("aapl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.Equal(t, 5, s.Len())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "a rejected add must not touch storage")
}

func TestAddEmpty(t *testing.T) {
	s, _ := newJSONStore(t)
	err := s.Add("  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRemove(t *testing.T) {
	s, path := newJSONStore(t)

	require.NoError(t, s.Remove("TSLA"))
	assert.False(t, s.Contains("TSLA"))
	assert.Equal(t, []domain.Symbol{"AAPL", "NVDA", "7203.T", "9984.T"}, s.Symbols())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["AAPL","NVDA","7203.T","9984.T"]`, string(data))
}

func TestRemoveAbsent(t *testing.T) {
	s, _ := newJSONStore(t)
	assert.ErrorIs(t, s.Remove("ZZZZ"), ErrNotFound)
	assert.Equal(t, 5, s.Len())
}

func TestRoundTripThroughReload(t *testing.T) {
	s, path := newJSONStore(t)
	require.NoError(t, s.Add("6758.T"))
	require.NoError(t, s.Remove("AAPL"))
	want := s.Symbols()

	reloaded, err := NewStore(NewJSONFile(path), defaults, nil)
	require.NoError(t, err)
	assert.Equal(t, want, reloaded.Symbols())
}

func TestRemoveAllThenReload(t *testing.T) {
	s, path := newJSONStore(t)
	for _, sym := range s.Symbols() {
		require.NoError(t, s.Remove(sym))
	}

	reloaded, err := NewStore(NewJSONFile(path), defaults, nil)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Symbols(), "an emptied list must not come back as defaults")
}

func TestSymbolsReturnsCopy(t *testing.T) {
	s, _ := newJSONStore(t)
	got := s.Symbols()
	got[0] = "XXXX"
	assert.Equal(t, domain.Symbol("AAPL"), s.Symbols()[0])
}

type failingBackend struct {
	saves   int
	healthy bool
	saved   []string
}

func (f *failingBackend) Load() ([]string, bool, error) { return nil, false, nil }
func (f *failingBackend) Save(symbols []string) error {
	f.saves++
	if !f.healthy {
		return errors.New("disk full")
	}
	f.saved = symbols
	return nil
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	b := &failingBackend{}
	s, err := NewStore(b, []string{"AAPL"}, nil)
	require.NoError(t, err)

	err = s.Add("MSFT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, s.Contains("MSFT"))
	assert.Equal(t, 1, b.saves)
}

func TestSaveReconcilesAfterFailedFlush(t *testing.T) {
	b := &failingBackend{}
	s, err := NewStore(b, []string{"AAPL"}, nil)
	require.NoError(t, err)
	require.Error(t, s.Add("MSFT"))

	b.healthy = true
	require.NoError(t, s.Save())
	assert.Equal(t, []string{"AAPL", "MSFT"}, b.saved)
}

func TestJSONFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewJSONFile(filepath.Join(dir, "nested", "list.json"))
	require.NoError(t, f.Save([]string{"AAPL"}))
	require.NoError(t, f.Save([]string{"AAPL", "7203.T"}))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "list.json", entries[0].Name())

	got, found, err := f.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"AAPL", "7203.T"}, got)
}

func TestJSONFileSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, NewJSONFile(path).Save(nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
