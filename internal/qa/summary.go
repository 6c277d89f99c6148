package qa

import (
	"sort"
	"strings"
)

// DatasetStats is one dataset's row of per-dataset accuracy counters,
// matching src/eval/summary.py's dataset_stats entries.
type DatasetStats struct {
	Total          int
	Correct        int
	Invalid        int
	ContainCorrect int
	NoEntity       int
}

// InvalidSample is one truncated record of an unparseable answer, kept
// for debugging (src/eval/summary.py caps this list at 20).
type InvalidSample struct {
	Index      int
	Dataset    string
	PredAnswer string
	Question   string
}

// Summary is the accuracy/invalid-count/per-dataset breakdown named by
// spec.md section 8 scenario 6's invalid_answers, ported from
// src/eval/summary.py::summarize_results.
type Summary struct {
	TotalQuestions           int
	OverallLLMAccuracy       float64
	OverallContainAccuracy   float64
	TotalCorrect             int
	TotalContainCorrect      int
	TotalInvalid             int
	ValidAnswerRate          float64
	QuestionsWithoutEntities int
	DatasetStats             map[string]DatasetStats
	InvalidSamples           []InvalidSample
}

func validSetForDataset(dataset string) map[string]struct{} {
	switch strings.ToLower(dataset) {
	case "pubmedqa":
		return setOf("yes", "no", "maybe")
	case "bioasq":
		return setOf("yes", "no")
	default:
		return setOf("a", "b", "c", "d")
	}
}

func setOf(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// Summarize computes accuracy, invalid-answer counts, and a weak
// "contain accuracy" (whether the gold option text appears among the
// retrieved passages) per dataset and overall, matching
// src/eval/summary.py::summarize_results's statistics exactly.
func Summarize(answers []Answer) Summary {
	stats := make(map[string]DatasetStats)
	var invalidSamples []InvalidSample

	for idx, a := range answers {
		dataset := strings.ToLower(a.Dataset)
		if dataset == "" {
			dataset = "unknown"
		}
		valid := validSetForDataset(dataset)

		predL := strings.ToLower(strings.TrimSpace(a.PredAnswer))
		goldL := strings.ToLower(strings.TrimSpace(a.GoldAnswer))

		s := stats[dataset]
		s.Total++

		if !a.HasEntities {
			s.NoEntity++
		}

		if _, ok := valid[predL]; !ok {
			s.Invalid++
			if len(invalidSamples) < 20 {
				invalidSamples = append(invalidSamples, InvalidSample{
					Index:      idx,
					Dataset:    dataset,
					PredAnswer: truncate(a.PredAnswer, 120),
					Question:   truncate(a.Question, 200),
				})
			}
		}

		if _, ok := valid[predL]; ok && predL == goldL {
			s.Correct++
		}

		if containMatch(dataset, a, goldL) {
			s.ContainCorrect++
		}

		stats[dataset] = s
	}

	var totalQuestions, totalCorrect, totalInvalid, totalContainCorrect, totalNoEntity int
	for _, s := range stats {
		totalQuestions += s.Total
		totalCorrect += s.Correct
		totalInvalid += s.Invalid
		totalContainCorrect += s.ContainCorrect
		totalNoEntity += s.NoEntity
	}

	summary := Summary{
		TotalQuestions:           totalQuestions,
		TotalCorrect:             totalCorrect,
		TotalInvalid:             totalInvalid,
		TotalContainCorrect:      totalContainCorrect,
		QuestionsWithoutEntities: totalNoEntity,
		DatasetStats:             stats,
		InvalidSamples:           invalidSamples,
	}
	if totalQuestions > 0 {
		summary.OverallLLMAccuracy = float64(totalCorrect) / float64(totalQuestions) * 100
		summary.OverallContainAccuracy = float64(totalContainCorrect) / float64(totalQuestions) * 100
		summary.ValidAnswerRate = float64(totalQuestions-totalInvalid) / float64(totalQuestions) * 100
	}
	return summary
}

func containMatch(dataset string, a Answer, goldL string) bool {
	if len(a.SortedPassages) == 0 {
		return false
	}
	joined := strings.ToLower(strings.Join(a.SortedPassages, " "))

	switch dataset {
	case "mmlu", "medqa", "medmcqa":
		optionText := goldOptionText(a.Question, goldL)
		return optionText != "" && strings.Contains(joined, strings.ToLower(optionText))
	default:
		return goldL != "" && strings.Contains(joined, goldL)
	}
}

// goldOptionText extracts the option text following "<gold>." on its
// own line of the question stem, e.g. "A. ischemic stroke" -> "ischemic stroke".
func goldOptionText(question, goldL string) string {
	prefix := goldL + "."
	for _, line := range strings.Split(question, "\n") {
		lineS := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(lineS), prefix) {
			parts := strings.SplitN(lineS, ".", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1])
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// SortedDatasetNames returns the Summary's dataset keys in sorted
// order, used for deterministic report rendering.
func (s Summary) SortedDatasetNames() []string {
	names := make([]string, 0, len(s.DatasetStats))
	for name := range s.DatasetStats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
