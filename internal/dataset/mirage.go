package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadMirage dispatches each name in datasets to its MIRAGE loader,
// mirroring load_mirage_questions_local's per-dataset path
// conventions under mirageRoot.
func LoadMirage(datasets []string, mirageRoot string, limit int) ([]Question, error) {
	var all []Question
	for _, ds := range datasets {
		switch strings.ToLower(ds) {
		case "medqa":
			qs, err := LoadMedQA(filepath.Join(mirageRoot, "medqa", "data_clean", "questions", "US", "4_options", "phrases_no_exclude_test.jsonl"), limit)
			if err != nil {
				return nil, err
			}
			all = append(all, qs...)
		case "medmcqa":
			qs, err := LoadMedMCQA(filepath.Join(mirageRoot, "medmcqa", "data", "dev.json"), limit)
			if err != nil {
				return nil, err
			}
			all = append(all, qs...)
		case "pubmedqa":
			qs, err := LoadPubMedQA(filepath.Join(mirageRoot, "pubmedqa", "data", "test_set.json"), limit)
			if err != nil {
				return nil, err
			}
			all = append(all, qs...)
		case "bioasq":
			qs, err := LoadBioASQ(filepath.Join(mirageRoot, "bioasq"), limit)
			if err != nil {
				return nil, err
			}
			all = append(all, qs...)
		case "mmlu":
			qs, err := LoadMMLU(filepath.Join(mirageRoot, "mmlu", "data", "test"), limit)
			if err != nil {
				return nil, err
			}
			all = append(all, qs...)
		default:
			return nil, fmt.Errorf("dataset: unknown mirage dataset %q", ds)
		}
	}
	return all, nil
}

// LoadMedQA reads MedQA's JSONL format (one {question, answer_idx,
// options} object per line), folding lettered options into the
// question text so the answerer sees them inline.
func LoadMedQA(path string, limit int) ([]Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: medqa: %w", err)
	}
	defer f.Close()

	var out []Question
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if applyLimit(len(out), limit) {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var item struct {
			Question  string            `json:"question"`
			AnswerIdx string            `json:"answer_idx"`
			Options   map[string]string `json:"options"`
		}
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			continue
		}
		question := strings.TrimSpace(item.Question)
		answer := strings.TrimSpace(item.AnswerIdx)
		if question == "" || answer == "" {
			continue
		}
		out = append(out, Question{Text: question + "\n\n" + formatOptions(item.Options), Answer: answer, Dataset: "medqa"})
	}
	return out, scanner.Err()
}

func formatOptions(options map[string]string) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString("Options:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s. %s\n", k, options[k])
	}
	return sb.String()
}

var copMapping = map[int]string{1: "A", 2: "B", 3: "C", 4: "D"}

// LoadMedMCQA reads MedMCQA's dev split, which despite its .json
// extension is newline-delimited JSON (one object per line), matching
// _load_medmcqa_json_or_jsonl's comment about the file's real shape.
func LoadMedMCQA(path string, limit int) ([]Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: medmcqa: %w", err)
	}
	defer f.Close()

	var out []Question
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if applyLimit(len(out), limit) {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var item struct {
			Question string `json:"question"`
			OpA      string `json:"opa"`
			OpB      string `json:"opb"`
			OpC      string `json:"opc"`
			OpD      string `json:"opd"`
			Cop      int    `json:"cop"`
		}
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			continue
		}
		question := strings.TrimSpace(item.Question)
		if question == "" {
			continue
		}
		full := fmt.Sprintf("%s\n\nA. %s\nB. %s\nC. %s\nD. %s", question, item.OpA, item.OpB, item.OpC, item.OpD)
		answer, ok := copMapping[item.Cop]
		if !ok {
			answer = "A"
		}
		out = append(out, Question{Text: full, Answer: answer, Dataset: "medmcqa"})
	}
	return out, scanner.Err()
}

// LoadPubMedQA reads test_set.json, a map of PMID -> {QUESTION,
// final_decision}, keeping only yes/no/maybe decisions.
func LoadPubMedQA(path string, limit int) ([]Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: pubmedqa: %w", err)
	}
	var data map[string]struct {
		Question      string `json:"QUESTION"`
		FinalDecision string `json:"final_decision"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("dataset: pubmedqa: decode: %w", err)
	}

	pmids := make([]string, 0, len(data))
	for pmid := range data {
		pmids = append(pmids, pmid)
	}
	sort.Strings(pmids)

	var out []Question
	for _, pmid := range pmids {
		if applyLimit(len(out), limit) {
			break
		}
		item := data[pmid]
		question := strings.TrimSpace(item.Question)
		answer := strings.ToLower(strings.TrimSpace(item.FinalDecision))
		if question == "" || !isOneOf(answer, "yes", "no", "maybe") {
			continue
		}
		out = append(out, Question{Text: question, Answer: answer, Dataset: "pubmedqa"})
	}
	return out, nil
}

// LoadBioASQ walks BioASQ's TaskNBGoldenEnriched directories for
// yes/no questions, matching _load_bioasq_yesno.
func LoadBioASQ(dir string, limit int) ([]Question, error) {
	taskDirs, err := filepath.Glob(filepath.Join(dir, "Task*BGoldenEnriched"))
	if err != nil {
		return nil, fmt.Errorf("dataset: bioasq: glob task dirs: %w", err)
	}
	sort.Strings(taskDirs)

	var out []Question
	for _, taskDir := range taskDirs {
		jsonFiles, err := filepath.Glob(filepath.Join(taskDir, "*_golden.json"))
		if err != nil {
			return nil, fmt.Errorf("dataset: bioasq: glob golden files: %w", err)
		}
		sort.Strings(jsonFiles)
		for _, jsonFile := range jsonFiles {
			if applyLimit(len(out), limit) {
				return out, nil
			}
			raw, err := os.ReadFile(jsonFile)
			if err != nil {
				continue
			}
			var doc struct {
				Questions []struct {
					Type        string `json:"type"`
					Body        string `json:"body"`
					ExactAnswer any    `json:"exact_answer"`
				} `json:"questions"`
			}
			if err := json.Unmarshal(raw, &doc); err != nil {
				continue
			}
			for _, q := range doc.Questions {
				if applyLimit(len(out), limit) {
					return out, nil
				}
				if strings.ToLower(q.Type) != "yesno" {
					continue
				}
				body := strings.TrimSpace(q.Body)
				answer := ""
				if s, ok := q.ExactAnswer.(string); ok {
					answer = strings.ToLower(strings.TrimSpace(s))
				}
				if body == "" || !isOneOf(answer, "yes", "no") {
					continue
				}
				out = append(out, Question{Text: body, Answer: answer, Dataset: "bioasq"})
			}
		}
	}
	return out, nil
}

// LoadMMLU reads MMLU's per-subject "<subject>_test.csv" files, each
// row shaped question,A,B,C,D,gold.
func LoadMMLU(testDir string, limit int) ([]Question, error) {
	csvFiles, err := filepath.Glob(filepath.Join(testDir, "*_test.csv"))
	if err != nil {
		return nil, fmt.Errorf("dataset: mmlu: glob: %w", err)
	}
	sort.Strings(csvFiles)

	var out []Question
	for _, csvFile := range csvFiles {
		if applyLimit(len(out), limit) {
			break
		}
		if err := loadMMLUFile(csvFile, limit, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func loadMMLUFile(csvFile string, limit int, out *[]Question) error {
	f, err := os.Open(csvFile)
	if err != nil {
		return fmt.Errorf("dataset: mmlu: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	for {
		if applyLimit(len(*out), limit) {
			return nil
		}
		row, err := reader.Read()
		if err != nil {
			break
		}
		if len(row) < 6 {
			continue
		}
		q := strings.TrimSpace(row[0])
		gold := strings.ToUpper(strings.TrimSpace(row[5]))
		if q == "" || !isOneOf(strings.ToLower(gold), "a", "b", "c", "d") {
			continue
		}
		full := fmt.Sprintf("%s\n\nA. %s\nB. %s\nC. %s\nD. %s", q, row[1], row[2], row[3], row[4])
		*out = append(*out, Question{Text: full, Answer: gold, Dataset: "mmlu"})
	}
	return nil
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
