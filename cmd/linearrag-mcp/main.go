// Command linearrag-mcp exposes the retrieval/QA pipeline as an MCP
// server over stdio, grounded on the teacher's use of
// github.com/modelcontextprotocol/go-sdk/mcp in internal/mcpclient
// (there used client-side; here used server-side, the symmetric half
// of the same SDK).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"linearrag/internal/app"
	"linearrag/internal/config"
	"linearrag/internal/llm"
	"linearrag/internal/qa"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "YAML config file (defaults applied when empty)")
	workingDir := flag.String("working-dir", "", "override working_dir")
	datasetName := flag.String("dataset", "", "override dataset_name")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("linearrag-mcp: %v", err)
		}
		cfg = loaded
	}
	if *workingDir != "" {
		cfg.WorkingDir = *workingDir
	}
	if *datasetName != "" {
		cfg.DatasetName = *datasetName
	}

	ctx := context.Background()
	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("linearrag-mcp: %v", err)
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "linearrag", Version: "0.1.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a biomedical question using the LinearRAG hybrid retriever and the configured LM, returning the parsed answer plus the retrieved context.",
	}, askHandler(a, cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Run LinearRAG's hybrid retrieval (dense + activation-spreading + hypergraph) for a question without calling the LM, returning the ranked passages.",
	}, retrieveHandler(a))

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		fmt.Fprintln(os.Stderr, "linearrag-mcp:", err)
		os.Exit(1)
	}
}

type askInput struct {
	Question string `json:"question" jsonschema:"the question text"`
	Kind     string `json:"kind,omitempty" jsonschema:"answer-parsing rule: mcq|yesno|yesnomaybe (default mcq)"`
}

type askOutput struct {
	Answer   string   `json:"answer"`
	Passages []string `json:"passages"`
}

func askHandler(a *app.App, cfg config.Config) mcp.ToolHandlerFor[askInput, askOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in askInput) (*mcp.CallToolResult, askOutput, error) {
		dk := llm.MCQ
		switch in.Kind {
		case "yesno":
			dk = llm.YesNo
		case "yesnomaybe":
			dk = llm.YesNoMaybe
		}
		answers, err := a.Orchestrator.Run(ctx, []qa.Question{{ID: "mcp", Text: in.Question, Dataset: cfg.DatasetName, DatasetKind: dk}})
		if err != nil {
			return nil, askOutput{}, err
		}
		ans := answers[0]
		return nil, askOutput{Answer: ans.PredAnswer, Passages: ans.SortedPassages}, nil
	}
}

type retrieveInput struct {
	Question string `json:"question" jsonschema:"the question text"`
}

type retrieveOutput struct {
	Passages []string  `json:"passages"`
	Scores   []float64 `json:"scores"`
}

func retrieveHandler(a *app.App) mcp.ToolHandlerFor[retrieveInput, retrieveOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in retrieveInput) (*mcp.CallToolResult, retrieveOutput, error) {
		result, err := a.Retriever.Retrieve(ctx, in.Question)
		if err != nil {
			return nil, retrieveOutput{}, err
		}
		return nil, retrieveOutput{Passages: result.SortedPassages, Scores: result.SortedScores}, nil
	}
}
