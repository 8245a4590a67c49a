package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bibbank/frauddetect/internal/domain/model"
)

// LogMarker prefixes scorer diagnostics that should be logged at info level.
const LogMarker = "PYTHON_LOG:"

// ProcessConfig describes how to launch the external scorer.
type ProcessConfig struct {
	// Command is the executable, e.g. "python3".
	Command string
	// Args are passed to Command, e.g. the path to predict.py.
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env entries are appended to the inherited environment.
	Env []string
	// WaitDelay bounds how long output is awaited once the scorer has exited
	// or been killed. Zero means DefaultWaitDelay.
	WaitDelay time.Duration
}

// DefaultWaitDelay is used when ProcessConfig.WaitDelay is unset.
const DefaultWaitDelay = 2 * time.Second

// ProcessScorer implements port.Scorer by running one external process per
// request. The request is written to stdin as JSON and a single JSON object
// is expected on stdout; stderr is diagnostics only.
type ProcessScorer struct {
	logger *slog.Logger
	cfg    ProcessConfig
}

// NewProcessScorer creates a scorer after checking that the command resolves.
func NewProcessScorer(cfg ProcessConfig, logger *slog.Logger) (*ProcessScorer, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("scorer command is required")
	}
	if _, err := exec.LookPath(cfg.Command); err != nil {
		return nil, fmt.Errorf("scorer command %q not found: %w", cfg.Command, err)
	}
	return &ProcessScorer{cfg: cfg, logger: logger}, nil
}

type scorerInput struct {
	Amount    json.Number `json:"amount"`
	Day       int         `json:"day"`
	Type      string      `json:"type"`
	PairCode  string      `json:"transaction_pair_code"`
	PartOfDay string      `json:"part_of_the_day"`
}

type scorerOutput struct {
	IsFraud          *bool              `json:"isFraud"`
	Fraud            *bool              `json:"fraud"`
	Probability      *float64           `json:"probability"`
	ModelPredictions map[string]float64 `json:"modelPredictions"`
	PredictionMethod string             `json:"predictionMethod"`
	TransactionID    string             `json:"transactionId"`
	Timestamp        string             `json:"timestamp"`
	Error            string             `json:"error"`
	Factors          []string           `json:"factors"`
}

// Score runs the scorer once. Every failure comes back as *model.ScoringError.
// Cancelling ctx kills the process.
func (s *ProcessScorer) Score(ctx context.Context, req model.TransactionRequest) (model.ScoreResult, error) {
	input, err := json.Marshal(scorerInput{
		Amount:    json.Number(req.Amount().String()),
		Day:       req.Day(),
		Type:      req.Type().String(),
		PairCode:  req.PairCode().String(),
		PartOfDay: req.PartOfDay().String(),
	})
	if err != nil {
		return model.ScoreResult{}, &model.ScoringError{Kind: model.ScoringErrorStart, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	cmd := exec.CommandContext(ctx, s.cfg.Command, s.cfg.Args...)
	cmd.Dir = s.cfg.Dir
	if len(s.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), s.cfg.Env...)
	}
	cmd.Stdin = bytes.NewReader(input)

	// exec copies both streams concurrently, so a chatty stderr cannot block
	// stdout. WaitDelay bounds the wait for descendants that keep them open.
	var stdout bytes.Buffer
	diag := &diagnosticWriter{logger: s.logger}
	cmd.Stdout = &stdout
	cmd.Stderr = diag
	cmd.WaitDelay = s.cfg.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	if err := cmd.Start(); err != nil {
		return model.ScoreResult{}, &model.ScoringError{Kind: model.ScoringErrorStart, Err: err}
	}
	waitErr := cmd.Wait()
	diag.flush()
	stderr := diag.String()

	switch {
	case waitErr == nil:
	case errors.Is(waitErr, exec.ErrWaitDelay):
		s.logger.Warn("scorer exited but its output stayed open", slog.Duration("wait_delay", cmd.WaitDelay))
	case ctx.Err() != nil:
		return model.ScoreResult{}, &model.ScoringError{
			Kind:      model.ScoringErrorTimeout,
			Err:       ctx.Err(),
			Stderr:    stderr,
			RawOutput: stdout.String(),
		}
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			s.logger.Error("scorer exited with failure",
				slog.Int("exit_code", exitErr.ExitCode()),
				slog.String("stderr", stderr),
			)
			return model.ScoreResult{}, &model.ScoringError{
				Kind:      model.ScoringErrorExit,
				ExitCode:  exitErr.ExitCode(),
				Stderr:    stderr,
				RawOutput: stdout.String(),
				Err:       waitErr,
			}
		}
		return model.ScoreResult{}, &model.ScoringError{
			Kind:   model.ScoringErrorStart,
			Err:    fmt.Errorf("failed to run scorer: %w", waitErr),
			Stderr: stderr,
		}
	}

	raw := strings.TrimSpace(stdout.String())
	if raw == "" {
		return model.ScoreResult{}, &model.ScoringError{Kind: model.ScoringErrorEmpty, Stderr: stderr}
	}

	result, err := decodeOutput(raw)
	if err != nil {
		s.logger.Error("failed to parse scorer output",
			slog.String("raw_output", raw),
			slog.String("error", err.Error()),
		)
		return model.ScoreResult{}, &model.ScoringError{
			Kind:      model.ScoringErrorMalformed,
			Err:       err,
			RawOutput: raw,
			Stderr:    stderr,
		}
	}

	return result, nil
}

// diagnosticWriter keeps a full copy of the scorer's stderr and logs it line
// by line as it arrives. exec writes to it from a single goroutine.
type diagnosticWriter struct {
	logger  *slog.Logger
	capture bytes.Buffer
	partial []byte
}

func (w *diagnosticWriter) Write(p []byte) (int, error) {
	w.capture.Write(p)
	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i < 0 {
			break
		}
		w.logLine(string(bytes.TrimRight(w.partial[:i], "\r")))
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}

// flush logs a trailing line that had no newline.
func (w *diagnosticWriter) flush() {
	if len(w.partial) > 0 {
		w.logLine(string(bytes.TrimRight(w.partial, "\r")))
		w.partial = nil
	}
}

func (w *diagnosticWriter) String() string {
	return w.capture.String()
}

func (w *diagnosticWriter) logLine(line string) {
	if line == "" {
		return
	}
	if idx := strings.Index(line, LogMarker); idx >= 0 {
		w.logger.Info("scorer", slog.String("line", strings.TrimSpace(line[idx+len(LogMarker):])))
		return
	}
	w.logger.Debug("scorer stderr", slog.String("line", line))
}

// decodeOutput reads exactly one JSON object and maps it onto a ScoreResult.
func decodeOutput(raw string) (model.ScoreResult, error) {
	dec := json.NewDecoder(strings.NewReader(raw))

	var out scorerOutput
	if err := dec.Decode(&out); err != nil {
		return model.ScoreResult{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return model.ScoreResult{}, fmt.Errorf("unexpected data after the result object")
	}

	if out.Probability == nil {
		if out.Error != "" {
			return model.ScoreResult{}, fmt.Errorf("scorer reported an error: %s", out.Error)
		}
		return model.ScoreResult{}, fmt.Errorf("probability is missing")
	}

	verdict := out.IsFraud
	if verdict == nil {
		verdict = out.Fraud
	}

	result, err := model.NewScoreResult(verdict, *out.Probability)
	if err != nil {
		return model.ScoreResult{}, err
	}
	result.PredictionMethod = out.PredictionMethod
	result.ModelPredictions = out.ModelPredictions
	result.Factors = out.Factors
	result.TransactionID = out.TransactionID
	result.Timestamp = out.Timestamp

	return result, nil
}
