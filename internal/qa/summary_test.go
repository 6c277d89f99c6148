package qa

import "testing"

func TestSummarizeAccuracyAndInvalidCounts(t *testing.T) {
	answers := []Answer{
		{Dataset: "medqa", PredAnswer: "A", GoldAnswer: "A", HasEntities: true},
		{Dataset: "medqa", PredAnswer: "B", GoldAnswer: "A", HasEntities: true},
		{Dataset: "medqa", PredAnswer: "INVALID", GoldAnswer: "C", HasEntities: false},
		{Dataset: "pubmedqa", PredAnswer: "Yes", GoldAnswer: "yes", HasEntities: true},
	}

	s := Summarize(answers)

	if s.TotalQuestions != 4 {
		t.Fatalf("TotalQuestions = %d, want 4", s.TotalQuestions)
	}
	if s.TotalCorrect != 2 {
		t.Fatalf("TotalCorrect = %d, want 2", s.TotalCorrect)
	}
	if s.TotalInvalid != 1 {
		t.Fatalf("TotalInvalid = %d, want 1", s.TotalInvalid)
	}
	if s.QuestionsWithoutEntities != 1 {
		t.Fatalf("QuestionsWithoutEntities = %d, want 1", s.QuestionsWithoutEntities)
	}

	medqa := s.DatasetStats["medqa"]
	if medqa.Total != 3 || medqa.Correct != 1 || medqa.Invalid != 1 {
		t.Fatalf("medqa stats = %+v, unexpected", medqa)
	}
}

func TestSummarizeContainAccuracyForMCQ(t *testing.T) {
	answers := []Answer{
		{
			Dataset:        "medqa",
			Question:       "What treats a headache?\nA. aspirin\nB. water\n",
			GoldAnswer:     "A",
			PredAnswer:     "A",
			SortedPassages: []string{"Aspirin is a common treatment for headache."},
		},
	}
	s := Summarize(answers)
	if s.TotalContainCorrect != 1 {
		t.Fatalf("TotalContainCorrect = %d, want 1", s.TotalContainCorrect)
	}
}

func TestGoldOptionTextExtraction(t *testing.T) {
	q := "Which drug?\nA. aspirin\nB. ibuprofen\n"
	if got := goldOptionText(q, "a"); got != "aspirin" {
		t.Fatalf("goldOptionText = %q, want aspirin", got)
	}
}
