package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadStandard reads "<root>/<name>/questions.json" and
// "<root>/<name>/chunks.json", numbering each chunk
// "<idx>:<chunk>" (load-bearing: internal/graph.Builder's sequential
// adjacency parses this exact prefix via "^(\\d+):").
func LoadStandard(root, name string) ([]Question, []string, error) {
	questionsPath := filepath.Join(root, name, "questions.json")
	chunksPath := filepath.Join(root, name, "chunks.json")

	rawQuestions, err := os.ReadFile(questionsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: standard questions: %w", err)
	}
	var questions []Question
	if err := json.Unmarshal(rawQuestions, &questions); err != nil {
		return nil, nil, fmt.Errorf("dataset: standard questions: decode: %w", err)
	}

	rawChunks, err := os.ReadFile(chunksPath)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: standard chunks: %w", err)
	}
	var chunks []string
	if err := json.Unmarshal(rawChunks, &chunks); err != nil {
		return nil, nil, fmt.Errorf("dataset: standard chunks: decode: %w", err)
	}

	passages := make([]string, len(chunks))
	for i, chunk := range chunks {
		passages[i] = fmt.Sprintf("%d:%s", i, chunk)
	}
	return questions, passages, nil
}

// LoadPubMedPassages loads every *.jsonl file under chunksDir, reading
// the first present of contents/text/content/passage as each line's
// text. Passage text is left unmodified (no numbering prefix) so the
// content hash matches any already-cached NER results, per
// load_pubmed_passages's comment about reusing existing caches.
func LoadPubMedPassages(chunksDir string, limit int) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(chunksDir, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("dataset: pubmed passages: glob: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("dataset: pubmed passages: no jsonl files under %s", chunksDir)
	}
	sort.Strings(files)

	var passages []string
	for _, file := range files {
		if applyLimit(len(passages), limit) {
			break
		}
		if err := loadPubMedFile(file, limit, &passages); err != nil {
			continue
		}
	}
	return passages, nil
}

func loadPubMedFile(path string, limit int, passages *[]string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(raw), "\n") {
		if applyLimit(len(*passages), limit) {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var item map[string]any
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			continue
		}
		text := firstNonEmptyField(item, "contents", "text", "content", "passage")
		if text != "" {
			*passages = append(*passages, text)
		}
	}
	return nil
}

func firstNonEmptyField(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := item[k].(string); ok {
			if t := strings.TrimSpace(v); t != "" {
				return t
			}
		}
	}
	return ""
}
