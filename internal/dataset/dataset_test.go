package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadMedQA(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medqa.jsonl")
	writeFile(t, path, `{"question":"What treats fever?","answer_idx":"B","options":{"A":"water","B":"aspirin"}}`+"\n")

	qs, err := LoadMedQA(path, 0)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "B", qs[0].Answer)
	assert.Equal(t, "medqa", qs[0].Dataset)
	assert.Contains(t, qs[0].Text, "B. aspirin")
}

func TestLoadMedMCQA(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dev.json")
	writeFile(t, path, `{"question":"Which drug?","opa":"x","opb":"y","opc":"z","opd":"w","cop":3}`+"\n")

	qs, err := LoadMedMCQA(path, 0)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "C", qs[0].Answer)
}

func TestLoadPubMedQA(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test_set.json")
	writeFile(t, path, `{"123":{"QUESTION":"Does X cause Y?","final_decision":"Yes"},"456":{"QUESTION":"Unclear case","final_decision":"unsure"}}`)

	qs, err := LoadPubMedQA(path, 0)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "yes", qs[0].Answer)
}

func TestLoadBioASQ(t *testing.T) {
	dir := t.TempDir()
	taskDir := filepath.Join(dir, "Task1BGoldenEnriched")
	path := filepath.Join(taskDir, "1_golden.json")
	writeFile(t, path, `{"questions":[{"type":"yesno","body":"Is aspirin an NSAID?","exact_answer":"yes"},{"type":"factoid","body":"ignored"}]}`)

	qs, err := LoadBioASQ(dir, 0)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "bioasq", qs[0].Dataset)
}

func TestLoadMMLU(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anatomy_test.csv")
	writeFile(t, path, "What bone?,femur,tibia,fibula,radius,A\n")

	qs, err := LoadMMLU(dir, 0)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "A", qs[0].Answer)
}

func TestLoadStandardNumbersChunksWithColonPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "demo", "questions.json"), `[{"question":"q1","answer":"A","dataset":"demo"}]`)
	writeFile(t, filepath.Join(dir, "demo", "chunks.json"), `["first chunk","second chunk"]`)

	questions, passages, err := LoadStandard(dir, "demo")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Equal(t, []string{"0:first chunk", "1:second chunk"}, passages)
}

func TestLoadPubMedPassagesReadsFirstPresentField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jsonl"), `{"contents":"passage one"}`+"\n"+`{"text":"passage two"}`+"\n")

	passages, err := LoadPubMedPassages(dir, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"passage one", "passage two"}, passages)
}
