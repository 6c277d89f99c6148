// Command linearrag-server exposes the retrieval/QA pipeline as a
// small JSON HTTP API, optionally gated by OIDC bearer-token auth
// (internal/auth), grounded on the teacher's internal/auth.OIDC wiring
// but narrowed to machine-to-machine token verification.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"linearrag/internal/app"
	"linearrag/internal/auth"
	"linearrag/internal/config"
	"linearrag/internal/llm"
	"linearrag/internal/qa"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "YAML config file (defaults applied when empty)")
	workingDir := flag.String("working-dir", "", "override working_dir")
	datasetName := flag.String("dataset", "", "override dataset_name")
	addr := flag.String("addr", ":8080", "listen address")
	oidcIssuer := flag.String("oidc-issuer", "", "OIDC issuer URL; empty disables auth")
	oidcClientID := flag.String("oidc-client-id", "", "OIDC client id this server's tokens are issued for")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("linearrag-server: %v", err)
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
		log.Fatalf("linearrag-server: %v", err)
	}

	var verifier *auth.Verifier
	if *oidcIssuer != "" {
		verifier, err = auth.NewVerifier(ctx, *oidcIssuer, *oidcClientID)
		if err != nil {
			log.Fatalf("linearrag-server: oidc: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthzHandler)
	mux.Handle("POST /v1/ask", verifier.Middleware(askHandler(a, cfg)))
	mux.Handle("POST /v1/retrieve", verifier.Middleware(retrieveHandler(a)))

	srv := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	log.Printf("linearrag-server listening on %s (dataset=%s)", *addr, cfg.DatasetName)
	log.Fatal(srv.ListenAndServe())
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type askRequest struct {
	Question string `json:"question"`
	Kind     string `json:"kind"`
}

type askResponse struct {
	Answer   string   `json:"answer"`
	Passages []string `json:"passages"`
	Error    string   `json:"error,omitempty"`
}

func askHandler(a *app.App, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Question == "" {
			http.Error(w, "question is required", http.StatusBadRequest)
			return
		}

		dk := llm.MCQ
		switch req.Kind {
		case "yesno":
			dk = llm.YesNo
		case "yesnomaybe":
			dk = llm.YesNoMaybe
		}

		answers, err := a.Orchestrator.Run(r.Context(), []qa.Question{{ID: "http", Text: req.Question, Dataset: cfg.DatasetName, DatasetKind: dk}})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		ans := answers[0]
		resp := askResponse{Answer: ans.PredAnswer, Passages: ans.SortedPassages}
		if ans.RetrievalError != nil {
			resp.Error = ans.RetrievalError.Error()
		} else if ans.AnswererError != nil {
			resp.Error = ans.AnswererError.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type retrieveRequest struct {
	Question string `json:"question"`
}

type retrieveResponse struct {
	Passages []string  `json:"passages"`
	Scores   []float64 `json:"scores"`
}

func retrieveHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req retrieveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Question == "" {
			http.Error(w, "question is required", http.StatusBadRequest)
			return
		}
		result, err := a.Retriever.Retrieve(r.Context(), req.Question)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, retrieveResponse{Passages: result.SortedPassages, Scores: result.SortedScores})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
