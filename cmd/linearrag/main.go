// Command linearrag is the CLI front end for the index/ask/eval
// operations of spec.md section 6, dispatched the way the teacher's
// own main.go does it: flag.NewFlagSet per subcommand, no CLI
// framework dependency.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"linearrag/internal/app"
	"linearrag/internal/config"
	"linearrag/internal/dataset"
	"linearrag/internal/llm"
	"linearrag/internal/qa"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "index":
		err = runIndex(ctx, os.Args[2:])
	case "ask":
		err = runAsk(ctx, os.Args[2:])
	case "eval":
		err = runEval(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "linearrag:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: linearrag <index|ask|eval> [flags]")
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runIndex(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file (defaults applied when empty)")
	workingDir := fs.String("working-dir", "", "override working_dir")
	datasetName := fs.String("dataset", "", "override dataset_name")
	chunksDir := fs.String("pubmed-dir", "", "directory of raw PubMed *.jsonl passage files")
	standardRoot := fs.String("standard-root", "", "root directory of <root>/<dataset>/{questions,chunks}.json")
	limit := fs.Int("limit", 0, "cap the number of passages indexed (0 = no cap)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *workingDir != "" {
		cfg.WorkingDir = *workingDir
	}
	if *datasetName != "" {
		cfg.DatasetName = *datasetName
	}

	var passages []string
	switch {
	case *chunksDir != "":
		passages, err = dataset.LoadPubMedPassages(*chunksDir, *limit)
	case *standardRoot != "":
		_, passages, err = dataset.LoadStandard(*standardRoot, cfg.DatasetName)
	default:
		return fmt.Errorf("index: one of -pubmed-dir or -standard-root is required")
	}
	if err != nil {
		return fmt.Errorf("index: load passages: %w", err)
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Pipeline.Run(ctx, passages); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if err := a.Manifest.Flush(); err != nil {
		return fmt.Errorf("index: flush manifest: %w", err)
	}
	if a.Cache != nil {
		if err := a.Cache.SaveAll(); err != nil {
			return fmt.Errorf("index: flush cache: %w", err)
		}
	}
	if err := a.MirrorArtifacts(ctx); err != nil {
		return fmt.Errorf("index: mirror artifacts: %w", err)
	}

	stats := a.Manifest.Stats()
	fmt.Printf("indexed %d passages, %d entities, %d hyperedges\n", stats.PassageCount, stats.EntityCount, stats.HyperedgeCount)
	return nil
}

func runAsk(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file (defaults applied when empty)")
	workingDir := fs.String("working-dir", "", "override working_dir")
	datasetName := fs.String("dataset", "", "override dataset_name")
	question := fs.String("q", "", "question text (required)")
	kind := fs.String("kind", "mcq", "answer-parsing rule: mcq|yesno|yesnomaybe")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *question == "" {
		return fmt.Errorf("ask: -q is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *workingDir != "" {
		cfg.WorkingDir = *workingDir
	}
	if *datasetName != "" {
		cfg.DatasetName = *datasetName
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}

	dk := parseKind(*kind)
	answers, err := a.Orchestrator.Run(ctx, []qa.Question{{ID: "q0", Text: *question, Dataset: cfg.DatasetName, DatasetKind: dk}})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	ans := answers[0]
	if ans.RetrievalError != nil {
		fmt.Fprintln(os.Stderr, "retrieval error:", ans.RetrievalError)
	}
	if ans.AnswererError != nil {
		fmt.Fprintln(os.Stderr, "answerer error:", ans.AnswererError)
	}
	fmt.Println(ans.PredAnswer)
	return nil
}

func parseKind(s string) llm.DatasetKind {
	switch s {
	case "yesno":
		return llm.YesNo
	case "yesnomaybe":
		return llm.YesNoMaybe
	default:
		return llm.MCQ
	}
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file (defaults applied when empty)")
	workingDir := fs.String("working-dir", "", "override working_dir")
	datasetName := fs.String("dataset", "", "override dataset_name")
	mirageRoot := fs.String("mirage-root", "", "root of the MIRAGE benchmark data tree")
	mirageSets := fs.String("mirage-datasets", "", "comma-separated MIRAGE dataset names (medqa,medmcqa,pubmedqa,bioasq,mmlu)")
	standardRoot := fs.String("standard-root", "", "root directory of <root>/<dataset>/questions.json")
	limit := fs.Int("limit", 0, "cap the number of questions evaluated (0 = no cap)")
	out := fs.String("out", "", "write the JSON summary to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *workingDir != "" {
		cfg.WorkingDir = *workingDir
	}
	if *datasetName != "" {
		cfg.DatasetName = *datasetName
	}

	var loaded []dataset.Question
	switch {
	case *mirageRoot != "":
		loaded, err = dataset.LoadMirage(splitCSV(*mirageSets), *mirageRoot, *limit)
	case *standardRoot != "":
		loaded, _, err = dataset.LoadStandard(*standardRoot, cfg.DatasetName)
	default:
		return fmt.Errorf("eval: one of -mirage-root or -standard-root is required")
	}
	if err != nil {
		return fmt.Errorf("eval: load questions: %w", err)
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}

	questions := make([]qa.Question, len(loaded))
	for i, q := range loaded {
		questions[i] = qa.Question{
			ID:          fmt.Sprintf("%s-%d", q.Dataset, i),
			Text:        q.Text,
			Dataset:     q.Dataset,
			DatasetKind: qa.DatasetKindFor(q.Dataset),
			GoldAnswer:  q.Answer,
		}
	}

	answers, err := a.Orchestrator.Run(ctx, questions)
	if err != nil {
		return fmt.Errorf("eval: %w", err)
	}
	summary := qa.Summarize(answers)

	enc, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Println(string(enc))
		return nil
	}
	return os.WriteFile(*out, enc, 0o644)
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
