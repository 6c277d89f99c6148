// Package qa drives question answering end to end: per-question
// retrieval (internal/retrieval), prompting the single-shot answerer
// (internal/llm), and answer parsing, preserving input order across a
// bounded worker pool (spec.md section 5's "results for N input
// questions are returned in input order regardless of worker
// scheduling").
package qa

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"linearrag/internal/llm"
	"linearrag/internal/retrieval"
)

// Question is one input item: its text, which dataset it was drawn
// from (selects the answer-parsing rule), and its gold answer for
// later scoring.
type Question struct {
	ID          string
	Text        string
	Dataset     string
	DatasetKind llm.DatasetKind
	GoldAnswer  string
}

// Answer is one graded result, matching the fields src/eval/summary.py
// reads off each result row (dataset, pred_answer, answer,
// has_entities, sorted_passage).
type Answer struct {
	QuestionID     string
	Question       string
	Dataset        string
	PredAnswer     string
	GoldAnswer     string
	HasEntities    bool
	SortedPassages []string
	RetrievalError error
	AnswererError  error
}

// DatasetKindFor maps a dataset name to its answer-parsing rule,
// mirroring eval/summary.py's per-dataset valid-answer sets.
func DatasetKindFor(dataset string) llm.DatasetKind {
	switch strings.ToLower(dataset) {
	case "pubmedqa":
		return llm.YesNoMaybe
	case "bioasq":
		return llm.YesNo
	default:
		return llm.MCQ
	}
}

// Orchestrator wires a Retriever and an Answerer into the per-question
// pipeline: retrieve, prompt, parse.
type Orchestrator struct {
	Retriever   *retrieval.Retriever
	Answerer    llm.Answerer
	Concurrency int
}

// NewOrchestrator builds an Orchestrator, defaulting Concurrency to 4
// workers when unset.
func NewOrchestrator(r *retrieval.Retriever, a llm.Answerer, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Orchestrator{Retriever: r, Answerer: a, Concurrency: concurrency}
}

// Run answers every question in questions, returning results in the
// same order as the input regardless of which worker finished first
// (spec.md section 5: "map, not unordered pool").
func (o *Orchestrator) Run(ctx context.Context, questions []Question) ([]Answer, error) {
	results := make([]Answer, len(questions))
	var g errgroup.Group
	g.SetLimit(o.Concurrency)

	for i, q := range questions {
		i, q := i, q
		g.Go(func() error {
			results[i] = o.answerOne(ctx, q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// answerOne runs the strictly sequential within-question pipeline:
// retrieve (seeds, activation, passage scoring, PPR, hypergraph boost
// all happen inside Retriever.Retrieve) then prompt the answerer.
func (o *Orchestrator) answerOne(ctx context.Context, q Question) Answer {
	ans := Answer{QuestionID: q.ID, Question: q.Text, Dataset: q.Dataset, GoldAnswer: q.GoldAnswer}

	result, err := o.Retriever.Retrieve(ctx, q.Text)
	if err != nil {
		ans.RetrievalError = err
		ans.PredAnswer = llm.Invalid
		return ans
	}
	ans.HasEntities = result.HasEntities
	ans.SortedPassages = result.SortedPassages

	prompt := buildPrompt(q.Text, result.SortedPassages)
	raw, err := o.Answerer.Answer(ctx, systemPrompt, prompt)
	if err != nil {
		ans.AnswererError = err
		ans.PredAnswer = llm.Invalid
		return ans
	}
	ans.PredAnswer = llm.ParseAnswer(q.DatasetKind, raw)
	return ans
}

const systemPrompt = "You are a careful biomedical question answering assistant. Answer using only the supplied context."

func buildPrompt(question string, passages []string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for i, p := range passages {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p)
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}
