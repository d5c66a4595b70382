package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/redactyl/gdprmask/internal/detectors"
	"github.com/redactyl/gdprmask/internal/merge"
	"github.com/redactyl/gdprmask/internal/ner"
	"github.com/redactyl/gdprmask/internal/phone"
	"github.com/redactyl/gdprmask/internal/redact"
	"github.com/redactyl/gdprmask/internal/risk"
	"github.com/redactyl/gdprmask/internal/telemetry"
	"github.com/redactyl/gdprmask/internal/types"
)

var tracer = telemetry.Tracer("github.com/redactyl/gdprmask/internal/engine")

// DefaultLanguage is used when a request names no language.
const DefaultLanguage = types.Slovenian

// Request carries the per-call anonymization settings.
type Request struct {
	Language      types.Language
	PreserveTypes []string
	Descriptive   bool
	MaskChar      rune
}

// Engine anonymizes texts. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	detectors []detectors.Detector
	onFailure func(DetectorFailure)
	threads   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDetectors replaces the default detector set. Order is the registration
// order used when concatenating spans.
func WithDetectors(ds ...detectors.Detector) Option {
	return func(e *Engine) { e.detectors = ds }
}

// WithFailureHook registers fn to observe detector failures.
func WithFailureHook(fn func(DetectorFailure)) Option {
	return func(e *Engine) { e.onFailure = fn }
}

// WithThreads bounds the number of texts or files processed at once by the
// batch entry points. Zero or less uses GOMAXPROCS.
func WithThreads(n int) Option {
	return func(e *Engine) { e.threads = n }
}

// New builds an Engine. Without WithDetectors it uses the offline gazetteer
// NER model and the libphonenumber finder alongside the pattern and regional
// tables.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, o := range opts {
		o(e)
	}
	if e.detectors == nil {
		e.detectors = detectors.New(ner.NewRegistry(ner.GazetteerLoader), phone.NewLibFinder())
	}
	return e
}

// Detectors returns the engine's detectors in registration order.
func (e *Engine) Detectors() []detectors.Detector {
	out := make([]detectors.Detector, len(e.detectors))
	copy(out, e.detectors)
	return out
}

func (e *Engine) workers() int {
	n := e.threads
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > 32 {
		n = 32
	}
	return n
}

// Anonymize detects personal data in text, masks it according to req and
// returns the scored result. Detector failures do not fail the call. A
// cancelled context returns ctx.Err() and no partial result.
func (e *Engine) Anonymize(ctx context.Context, text string, req Request) (types.Result, error) {
	lang := req.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	ctx, span := tracer.Start(ctx, "engine.anonymize", trace.WithAttributes(
		attribute.String("language", string(lang)),
		attribute.Int("chars", utf8.RuneCountInString(text)),
	))
	defer span.End()

	if !utf8.ValidString(text) {
		span.SetStatus(codes.Error, ErrInvalidText.Error())
		return types.Result{}, ErrInvalidText
	}
	if err := ctx.Err(); err != nil {
		return types.Result{}, err
	}
	if text == "" {
		return finish(span, lang, text, text, []types.MaskedEntity{}), nil
	}
	if !lang.Supported() {
		log.Warn().Func(telemetry.LogTraceFields(ctx)).Str("language", string(lang)).Msg("unsupported language, no detections")
		return finish(span, lang, text, text, []types.MaskedEntity{}), nil
	}

	start := time.Now()
	spans, err := e.detect(ctx, text, lang)
	if err != nil {
		return types.Result{}, err
	}

	src := []rune(text)
	set, invalid := merge.Merge(src, spans)
	for _, s := range invalid {
		reportInvalid(ctx, s)
	}
	if err := ctx.Err(); err != nil {
		return types.Result{}, err
	}

	masked, entities := redact.Mask(text, set, redact.Options{
		Preserve:    preserveSet(ctx, req.PreserveTypes),
		Descriptive: req.Descriptive,
		MaskChar:    req.MaskChar,
	})
	res := finish(span, lang, text, masked, entities)
	log.Debug().Func(telemetry.LogTraceFields(ctx)).
		Str("language", string(lang)).
		Int("spans", len(spans)).
		Int("masked", res.TotalMasked).
		Str("risk", string(res.PrivacyRisk)).
		Dur("took", time.Since(start)).
		Msg("anonymized text")
	return res, nil
}

// detect runs every detector on its own goroutine and concatenates the spans
// in registration order.
func (e *Engine) detect(ctx context.Context, text string, lang types.Language) ([]types.Span, error) {
	perDetector := make([][]types.Span, len(e.detectors))
	var g errgroup.Group
	for i, d := range e.detectors {
		g.Go(func() error {
			spans, err := runDetector(ctx, d, text, lang)
			if err != nil {
				e.fail(ctx, DetectorFailure{Method: d.Method(), Err: err})
				return nil
			}
			perDetector[i] = spans
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var all []types.Span
	for _, spans := range perDetector {
		all = append(all, spans...)
	}
	return all, nil
}

func runDetector(ctx context.Context, d detectors.Detector, text string, lang types.Language) (spans []types.Span, err error) {
	ctx, span := tracer.Start(ctx, "detector."+string(d.Method()))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "detector failed")
		}
	}()
	spans, err = d.Detect(ctx, text, lang)
	span.SetAttributes(attribute.Int("spans", len(spans)))
	return spans, err
}

// reportInvalid records a span that a detector emitted outside the text or
// with an empty range. It is a detector bug, not a DetectorFailure.
func reportInvalid(ctx context.Context, s types.Span) {
	trace.SpanFromContext(ctx).AddEvent("invalid_span", trace.WithAttributes(
		attribute.String("method", string(s.Method)),
		attribute.String("type", string(s.Type)),
		attribute.Int("start", s.Start),
		attribute.Int("end", s.End),
	))
	log.Warn().Func(telemetry.LogTraceFields(ctx)).
		Str("method", string(s.Method)).
		Str("type", string(s.Type)).
		Int("start", s.Start).
		Int("end", s.End).
		Msg("detector produced an invalid span, dropped")
}

func (e *Engine) fail(ctx context.Context, f DetectorFailure) {
	// A cancelled call reports ctx.Err() instead.
	if ctx.Err() != nil {
		return
	}
	trace.SpanFromContext(ctx).AddEvent("detector_failure", trace.WithAttributes(
		attribute.String("method", string(f.Method)),
		attribute.String("error", f.Err.Error()),
	))
	log.Warn().Func(telemetry.LogTraceFields(ctx)).
		Str("method", string(f.Method)).
		Err(f.Err).
		Msg("detector failed, continuing without it")
	if e.onFailure != nil {
		e.onFailure(f)
	}
}

func preserveSet(ctx context.Context, names []string) map[types.EntityType]bool {
	if len(names) == 0 {
		return nil
	}
	out := make(map[types.EntityType]bool, len(names))
	for _, n := range names {
		t, ok := types.ParseEntityType(n)
		if !ok {
			log.Debug().Func(telemetry.LogTraceFields(ctx)).Str("type", n).Msg("ignoring unknown preserve type")
			continue
		}
		out[t] = true
	}
	return out
}

func finish(span trace.Span, lang types.Language, original, anonymized string, entities []types.MaskedEntity) types.Result {
	res := assemble(lang, original, anonymized, entities)
	span.SetAttributes(
		attribute.Int("entities", len(entities)),
		attribute.String("risk", string(res.PrivacyRisk)),
	)
	return res
}

func assemble(lang types.Language, original, anonymized string, entities []types.MaskedEntity) types.Result {
	level, notes := risk.Score(entities)
	methods := make(map[types.Method]int)
	for _, me := range entities {
		methods[me.Method]++
	}
	return types.Result{
		Language:         lang,
		OriginalText:     original,
		AnonymizedText:   anonymized,
		MaskedEntities:   entities,
		TotalMasked:      len(entities),
		DetectionMethods: methods,
		PrivacyRisk:      level,
		ComplianceNotes:  notes,
		Compliance:       risk.Assess(entities),
	}
}
