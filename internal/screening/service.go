// SPDX-License-Identifier: Apache-2.0

// Package screening is the application service shared by the HTTP API, the
// MCP tools and the CLI. It looks up rule tables, runs the evaluator and the
// document generator, and records logs and metrics around them.
package screening

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clearrecordproj/clearrecord/internal/documents"
	"github.com/clearrecordproj/clearrecord/internal/eligibility"
	"github.com/clearrecordproj/clearrecord/internal/logging"
	"github.com/clearrecordproj/clearrecord/internal/metrics"
	"github.com/clearrecordproj/clearrecord/internal/rules"
)

type Service struct {
	registry  *rules.Registry
	evaluator *eligibility.Evaluator
	generator *documents.Generator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Service)

// WithClock fixes the as-of date for evaluations and the generated-at time
// for filing packages.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(registry *rules.Registry, opts ...Option) (*Service, error) {
	s := &Service{
		registry: registry,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	generator, err := documents.NewGenerator(registry, documents.WithClock(s.now))
	if err != nil {
		return nil, err
	}
	s.generator = generator
	s.evaluator = eligibility.NewEvaluator(eligibility.WithClock(s.now))
	return s, nil
}

func (s *Service) Jurisdictions() []*rules.Jurisdiction {
	return s.registry.List()
}

func (s *Service) Jurisdiction(id string) (*rules.Jurisdiction, error) {
	j, err := s.registry.Get(id)
	if err != nil {
		s.metrics.IncrementRejection("unknown_jurisdiction")
	}
	return j, err
}

// Evaluate screens one case against a jurisdiction's rule table. Only the
// verdict counts are logged; case facts never are.
func (s *Service) Evaluate(ctx context.Context, jurisdiction string, c eligibility.Case) (*eligibility.Result, error) {
	j, err := s.Jurisdiction(jurisdiction)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.evaluator.Evaluate(j, c)
	if err != nil {
		s.metrics.IncrementRejection("invalid_case")
		s.logger.InfoContext(ctx, "case rejected",
			"jurisdiction", j.ID,
			"error", err,
		)
		return nil, err
	}
	elapsed := time.Since(start)

	s.metrics.ObserveEvaluateLatency(elapsed)
	s.metrics.ObserveResult(*result)

	counts := result.Counts()
	s.logger.InfoContext(ctx, "case evaluated",
		"jurisdiction", j.ID,
		"rules_version", j.Version,
		"classification", result.Classification.Kind,
		"eligible", counts[eligibility.VerdictEligible],
		"ineligible", counts[eligibility.VerdictIneligible],
		"needs_more_info", counts[eligibility.VerdictNeedsMoreInfo],
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

// Generate builds a filing package. A partial package is returned together
// with the joined generation errors, exactly as documents.Generator does.
func (s *Service) Generate(ctx context.Context, req documents.Request) (*documents.Package, error) {
	pkg, err := s.generator.Generate(ctx, req)

	jurisdiction := ""
	if req.Result != nil {
		jurisdiction = req.Result.Jurisdiction
	}
	if pkg != nil {
		for _, f := range pkg.Filings {
			s.metrics.IncrementGeneration(jurisdiction, f.ReliefType, true)
		}
	}
	for _, ge := range GenerationErrors(err) {
		s.metrics.IncrementGeneration(jurisdiction, ge.ReliefType, false)
	}

	switch {
	case pkg != nil:
		s.logger.InfoContext(ctx, "filing package generated",
			"jurisdiction", jurisdiction,
			"package_id", pkg.ID,
			"filings", len(pkg.Filings),
			"failures", len(pkg.Failures),
		)
	case err != nil:
		s.logger.InfoContext(ctx, "filing package not generated",
			"jurisdiction", jurisdiction,
			"error", err,
		)
	}
	return pkg, err
}

// GenerationErrors flattens err into the *documents.GenerationError values
// it carries, looking through errors.Join.
func GenerationErrors(err error) []*documents.GenerationError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*documents.GenerationError
		for _, e := range joined.Unwrap() {
			out = append(out, GenerationErrors(e)...)
		}
		return out
	}
	var ge *documents.GenerationError
	if errors.As(err, &ge) {
		return []*documents.GenerationError{ge}
	}
	return nil
}
