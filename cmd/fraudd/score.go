package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/service"
)

type scoreOptions struct {
	amount    string
	txType    string
	pairCode  string
	partOfDay string
	day       int
	timeout   time.Duration
}

func newScoreCmd(a *app) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a single transaction and print the assessment",
		Long:  "Validate, score and assess one transaction. The assessment is printed as JSON on stdout and nothing is stored.",
		Example: `  fraudd score --amount 1500 --type CASH_OUT --pair-code cm --part-of-day night --day 15`,
		Annotations: map[string]string{logsToStderr: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.score(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.amount, "amount", "", "transaction amount")
	f.IntVar(&opts.day, "day", 0, "day of the month (1-31)")
	f.StringVar(&opts.txType, "type", "", "transaction type (CASH_OUT, TRANSFER, PAYMENT, CASH_IN, DEBIT)")
	f.StringVar(&opts.pairCode, "pair-code", "", "transaction pair code (cc, cm)")
	f.StringVar(&opts.partOfDay, "part-of-day", "", "part of the day (morning, afternoon, evening, night)")
	f.DurationVar(&opts.timeout, "timeout", 0, "scorer timeout (default from config)")
	return cmd
}

func (a *app) score(cmd *cobra.Command, opts *scoreOptions) error {
	amount, err := decimal.NewFromString(opts.amount)
	if err != nil {
		return &model.ValidationError{Field: "amount", Value: opts.amount, Message: fmt.Sprintf("Invalid amount: %s", opts.amount)}
	}

	req, err := service.NewValidator().Validate(&service.RawTransaction{
		Amount:    amount,
		Day:       opts.day,
		Type:      opts.txType,
		PairCode:  opts.pairCode,
		PartOfDay: opts.partOfDay,
	})
	if err != nil {
		return err
	}

	scorer, err := a.newScorer(nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	timeout := opts.timeout
	if timeout == 0 {
		timeout = a.cfg.Scorer.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := scorer.Score(ctx, req)
	if err != nil {
		return err
	}

	assessment := service.NewAssessor().Assess(req, result)
	a.logger.Debug("transaction assessed",
		"transaction_id", assessment.TransactionID(),
		"status", assessment.Status().String(),
		"risk_score", assessment.RiskScore(),
	)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(dto.FromAssessment(assessment))
}
