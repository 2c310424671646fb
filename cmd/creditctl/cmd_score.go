package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/service"
	"github.com/bibbank/creditrisk/internal/infrastructure/config"
	"github.com/bibbank/creditrisk/internal/infrastructure/ml"
)

type scoreOptions struct {
	input           string
	policyFile      string
	modelPath       string
	estimatorMode   string
	stubProbability float64
	verbose         bool
}

// scoreOutput is what `creditctl score` prints.
type scoreOutput struct {
	Result model.ScoringResult    `json:"result"`
	Notice service.CustomerNotice `json:"customer_notice"`
}

func newScoreCmd() *cobra.Command {
	opts := scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one applicant offline",
		Long: `Score reads an assessment request as JSON (the same body accepted by
POST /v1/assessments) and runs the scoring engine in-process. Nothing is
stored or published.

Examples:
  creditctl score --input applicant.json
  cat applicant.json | creditctl score --estimator stub --stub-probability 0.3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "Request JSON file, - for stdin")
	cmd.Flags().StringVar(&opts.policyFile, "policy", "", "Engine policy YAML (defaults when empty)")
	cmd.Flags().StringVar(&opts.modelPath, "model", "", "Logistic model artifact (embedded default when empty)")
	cmd.Flags().StringVar(&opts.estimatorMode, "estimator", config.EstimatorLocal, "Estimator: local or stub")
	cmd.Flags().Float64Var(&opts.stubProbability, "stub-probability", 0.2, "Probability returned by the stub estimator")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine diagnostics to stderr")
	return cmd
}

func runScore(cmd *cobra.Command, opts scoreOptions) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if opts.estimatorMode == config.EstimatorRemote {
		return fmt.Errorf("estimator %q is not supported offline", opts.estimatorMode)
	}

	raw, err := readInput(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}
	var req dto.AssessCreditRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}
	req.TenantID = "creditctl"

	if err := dto.Validate(req); err != nil {
		return err
	}
	input, err := req.ToAssessmentInput()
	if err != nil {
		return err
	}

	policy, err := config.LoadPolicy(opts.policyFile, 0)
	if err != nil {
		return err
	}
	estimator, err := ml.NewEstimator(config.EstimatorConfig{
		Mode:            opts.estimatorMode,
		ModelPath:       opts.modelPath,
		StubProbability: opts.stubProbability,
	}, logger)
	if err != nil {
		return err
	}
	engine, err := service.NewFusionEngine(policy, estimator, logger)
	if err != nil {
		return err
	}

	result, err := engine.Assess(cmd.Context(), input)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(scoreOutput{Result: result, Notice: service.BuildCustomerNotice(result)})
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" || path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
