package interpreter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tasktalk/internal/llm"
	"tasktalk/internal/observability"
	"tasktalk/internal/tasks"
)

// Result is what the thin request handlers return to the user.
type Result struct {
	ResponseText string `json:"response"`
	ActionTaken  bool   `json:"actionTaken"`
}

// Options tunes the interpreter; zero values get safe defaults.
type Options struct {
	UpstreamTimeout time.Duration
	ReadLimit       int
}

// Interpreter sequences one command through classify, validate, dispatch and
// compose. The upstream model call is the only suspension point; once
// classification returns, the rest of the pipeline runs straight through.
type Interpreter struct {
	classifier llm.Classifier
	dispatcher *Dispatcher
	metrics    *observability.Metrics
	stages     *observability.CommandStageWindow
	logger     *zap.Logger

	upstreamTimeout time.Duration
	now             func() time.Time
}

func New(
	classifier llm.Classifier,
	store tasks.Store,
	metrics *observability.Metrics,
	stages *observability.CommandStageWindow,
	logger *zap.Logger,
	opts Options,
) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.UpstreamTimeout <= 0 {
		opts.UpstreamTimeout = 30 * time.Second
	}
	return &Interpreter{
		classifier:      classifier,
		dispatcher:      NewDispatcher(store, metrics, logger, opts.ReadLimit),
		metrics:         metrics,
		stages:          stages,
		logger:          logger,
		upstreamTimeout: opts.UpstreamTimeout,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Interpret handles one command for one owner. Only upstream and store
// failures surface as errors; every other condition degrades into a
// well-formed response with ActionTaken=false.
func (i *Interpreter) Interpret(ctx context.Context, ownerID, text string) (Result, error) {
	outcome, err := i.run(ctx, ownerID, text)
	if err != nil {
		return Result{}, err
	}
	return Result{ResponseText: outcome.ResponseText, ActionTaken: outcome.Dispatched}, nil
}

func (i *Interpreter) run(ctx context.Context, ownerID, text string) (Outcome, error) {
	started := i.now()
	text = strings.TrimSpace(text)
	if text == "" {
		outcome := Outcome{Intent: Intent{Action: ActionNone}}
		outcome.ResponseText = Compose(outcome)
		return outcome, nil
	}

	classifyCtx, cancel := context.WithTimeout(ctx, i.upstreamTimeout)
	defer cancel()

	classifyStart := i.now()
	raw, err := i.classifier.Classify(classifyCtx, buildPromptContext(started), text)
	classifyTook := i.now().Sub(classifyStart)
	i.stages.Observe(observability.StageClassify, classifyTook)
	if i.metrics != nil {
		i.metrics.ObserveUpstreamLatency(classifyTook)
	}
	if err != nil {
		if i.metrics != nil {
			i.metrics.UpstreamFailures.Inc()
			i.metrics.ObserveCommand(string(ActionNone), "upstream_error")
		}
		i.logger.Warn("upstream classification failed",
			zap.String("owner_id", ownerID),
			zap.Error(err))
		return Outcome{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	intent, provisional, rejection := ValidateRaw(raw)

	outcome := Outcome{Intent: intent, ResponseText: provisional, Rejection: rejection}
	if rejection == RejectionNone {
		dispatchStart := i.now()
		outcome, err = i.dispatcher.Dispatch(ctx, ownerID, intent, provisional)
		i.stages.Observe(observability.StageDispatch, i.now().Sub(dispatchStart))
		if err != nil {
			if i.metrics != nil {
				i.metrics.ObserveCommand(string(intent.Action), "store_error")
			}
			return Outcome{}, err
		}
	}

	if outcome.Rejection != RejectionNone && i.metrics != nil {
		i.metrics.ObserveRejection(string(outcome.Rejection))
	}

	outcome.ResponseText = Compose(outcome)
	i.stages.Observe(observability.StageCommandTotal, i.now().Sub(started))
	if i.metrics != nil {
		i.metrics.ObserveCommand(string(outcome.Intent.Action), commandResult(outcome))
	}
	i.logger.Info("command interpreted",
		zap.String("owner_id", ownerID),
		zap.String("action", string(outcome.Intent.Action)),
		zap.Bool("dispatched", outcome.Dispatched),
		zap.String("rejection", string(outcome.Rejection)))
	return outcome, nil
}

func commandResult(outcome Outcome) string {
	switch {
	case outcome.Dispatched:
		return "dispatched"
	case outcome.Rejection != RejectionNone:
		return "rejected"
	default:
		return "noop"
	}
}
