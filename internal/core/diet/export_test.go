package diet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", DefaultFilename)

	err := WriteSnapshot(path, []SnapshotRow{
		{Name: "Kheer", ID: "r1", Label: LabelVegetarian},
		{Name: "Egg Curry, Kerala style", ID: "r2", Label: LabelNonVegetarian},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"name,_id,diet_web_verified\n"+
			"Kheer,r1,vegetarian\n"+
			"\"Egg Curry, Kerala style\",r2,non-vegetarian\n",
		string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteSnapshot_Failure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := WriteSnapshot(filepath.Join(blocker, "snapshot.csv"), nil)
	require.Error(t, err)

	var ee *ExportError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, filepath.Join(blocker, "snapshot.csv"), ee.Path)
}

type brokenWriter struct {
	calls int
}

func (w *brokenWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("no space left on device")
}

func TestWriteRows_StopsAtFirstWriteError(t *testing.T) {
	out := &brokenWriter{}
	rows := []SnapshotRow{
		{Name: strings.Repeat("x", 8192), ID: "big", Label: LabelVegetarian},
		{Name: "Kheer", ID: "r1", Label: LabelVegetarian},
	}

	err := writeRows(out, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"big"`)
	assert.Contains(t, err.Error(), "no space left on device")
	assert.Equal(t, 1, out.calls)
}

type staticSource struct {
	ds  recipe.Dataset
	err error
}

func (s staticSource) Load(context.Context) (recipe.Dataset, error) {
	return s.ds, s.err
}

func testPipeline(src recipe.Source, kb *fakeKB) *Pipeline {
	return NewPipeline(src, func() KnowledgeBase { return kb }, config.ClassificationConfig{Workers: 1})
}

func TestPipelineRun(t *testing.T) {
	kb := newFakeKB()
	src := staticSource{ds: recipe.Dataset{
		Columns: []string{"name", "_id", "diet"},
		Rows: []recipe.Row{
			{"name": "Kheer", "_id": "r1"},
			{"name": "Butter Chicken", "_id": "r2"},
			{"name": "kheer ", "_id": "r3"},
			{"name": nil, "_id": "r4"},
		},
	}}
	path := filepath.Join(t.TempDir(), "snapshot.csv")

	report, err := testPipeline(src, kb).Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, report.Path)
	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, map[Label]int{LabelVegetarian: 2, LabelNonVegetarian: 1, LabelUnknown: 1}, report.Labels)
	assert.EqualValues(t, 4, report.Stats.ExternalCalls)
	assert.Equal(t, 1, kb.resolveCalls["kheer"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"name,_id,diet_web_verified\n"+
			"Kheer,r1,vegetarian\n"+
			"Butter Chicken,r2,non-vegetarian\n"+
			"kheer ,r3,vegetarian\n"+
			",r4,unknown\n",
		string(data))
}

func TestPipelineRun_RequiresNameAndID(t *testing.T) {
	src := staticSource{ds: recipe.Dataset{Columns: []string{"name"}}}

	_, err := testPipeline(src, newFakeKB()).Run(context.Background(), filepath.Join(t.TempDir(), "x.csv"))

	var se *recipe.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"_id"}, se.Missing)
}

func TestPipelineRun_SourceFailure(t *testing.T) {
	src := staticSource{err: errors.New("disk gone")}

	_, err := testPipeline(src, newFakeKB()).Run(context.Background(), filepath.Join(t.TempDir(), "x.csv"))
	assert.ErrorContains(t, err, "disk gone")
}

func TestPipelineClassifyOne(t *testing.T) {
	p := testPipeline(staticSource{}, newFakeKB())
	assert.Equal(t, LabelNonVegetarian, p.ClassifyOne(context.Background(), "Egg Curry"))
	assert.Equal(t, LabelUnknown, p.ClassifyOne(context.Background(), " "))
}
