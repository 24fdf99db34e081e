// Package simulate runs simulated examinees through the session engine to
// check how well the estimator recovers a known ability.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/adaptiq/internal/irt"
	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/selection"
	"github.com/abhisek/adaptiq/internal/session"
)

const (
	correctAnswer = "correct"
	wrongAnswer   = "wrong"
)

// Options controls a simulation run.
type Options struct {
	// N is the number of simulated examinees.
	N int
	// Theta is the true ability of every examinee unless ThetaMin < ThetaMax,
	// in which case true abilities are drawn uniformly from that range.
	Theta    float64
	ThetaMin float64
	ThetaMax float64
	// Sections to assess. Empty means every section of the bank.
	Sections []itembank.Section
	Seed     uint64
	// Concurrency bounds parallel sessions; zero means GOMAXPROCS.
	Concurrency int
	// ResponseTimeMs is reported for every simulated answer.
	ResponseTimeMs int64
}

// Report summarises estimation error over a run.
type Report struct {
	N            int     `json:"n"`
	MAE          float64 `json:"mae"`
	RMSE         float64 `json:"rmse"`
	Bias         float64 `json:"bias"`
	MeanTrue     float64 `json:"mean_true_theta"`
	MeanEstimate float64 `json:"mean_estimate"`
	MeanItems    float64 `json:"mean_items"`
	MeanEIQ      float64 `json:"mean_eiq"`
	Unreliable   int     `json:"unreliable"`
}

// Outcome is one simulated examinee's result.
type Outcome struct {
	TrueTheta float64
	Estimate  float64
	Items     int
	EIQ       int
	Reliable  bool
}

// Run simulates opts.N sessions against bank with the engine configured by
// cfg. Examinees answer correctly with the 3PL probability at their true
// ability.
func Run(ctx context.Context, cfg session.Config, bank *itembank.Bank, opts Options, log *logger.Logger) (Report, error) {
	if opts.N <= 0 {
		return Report{}, fmt.Errorf("simulation needs at least one examinee, got %d", opts.N)
	}
	if log == nil {
		log = logger.Nop()
	}
	sections := opts.Sections
	if len(sections) == 0 {
		sections = bank.Sections()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	svc, err := session.NewService(cfg, session.Options{
		Banks:    itembank.NewRegistry(answerKeyed(bank)),
		Exposure: session.NewMemoryExposure(session.DefaultExposureWindow),
		IDs:      &session.SequentialIDs{Prefix: "sim"},
		Logger:   log,
	})
	if err != nil {
		return Report{}, err
	}

	outcomes := make([]Outcome, opts.N)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range opts.N {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(i)))
			theta := opts.Theta
			if opts.ThetaMin < opts.ThetaMax {
				theta = opts.ThetaMin + rng.Float64()*(opts.ThetaMax-opts.ThetaMin)
			}
			out, err := examinee(gctx, svc, fmt.Sprintf("examinee-%d", i), sections, theta, opts.ResponseTimeMs, rng)
			if err != nil {
				return fmt.Errorf("examinee %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	r := Summarize(outcomes)
	log.Info("simulation finished",
		"n", r.N,
		"mae", r.MAE,
		"rmse", r.RMSE,
		"bias", r.Bias,
		"mean_items", r.MeanItems,
	)
	return r, nil
}

func examinee(ctx context.Context, svc *session.Service, userID string, sections []itembank.Section, theta float64, rtMs int64, rng *rand.Rand) (Outcome, error) {
	sess, err := svc.StartSession(ctx, userID, sections)
	if err != nil {
		return Outcome{}, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		it, err := svc.NextQuestion(ctx, sess.ID)
		if errors.Is(err, session.ErrExhausted) {
			break
		}
		if err != nil {
			return Outcome{}, err
		}
		answer := wrongAnswer
		if rng.Float64() < irt.Probability(theta, selection.ParamsOf(it)) {
			answer = correctAnswer
		}
		if _, err := svc.SubmitResponse(ctx, sess.ID, session.SubmitRequest{
			ItemID:         it.ID,
			Answer:         answer,
			ResponseTimeMs: rtMs,
		}); err != nil {
			return Outcome{}, err
		}
	}
	res, err := svc.Complete(ctx, sess.ID)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		TrueTheta: theta,
		Estimate:  res.Theta,
		Items:     res.ItemsAnswered,
		EIQ:       res.EIQ,
		Reliable:  res.Reliable,
	}, nil
}

// answerKeyed returns a copy of bank whose items all key the simulated
// correct answer, so scoring depends only on the drawn response.
func answerKeyed(bank *itembank.Bank) *itembank.Bank {
	items := bank.AllItems()
	for i := range items {
		items[i].Content.Answer = correctAnswer
	}
	b, err := itembank.New(bank.Version(), items)
	if err != nil {
		// items came from a validated bank
		panic(err)
	}
	return b
}

// Summarize computes error statistics over outcomes.
func Summarize(outcomes []Outcome) Report {
	r := Report{N: len(outcomes)}
	if r.N == 0 {
		return r
	}
	var absSum, sqSum, errSum, trueSum, estSum, itemSum, eiqSum float64
	for _, o := range outcomes {
		d := o.Estimate - o.TrueTheta
		absSum += math.Abs(d)
		sqSum += d * d
		errSum += d
		trueSum += o.TrueTheta
		estSum += o.Estimate
		itemSum += float64(o.Items)
		eiqSum += float64(o.EIQ)
		if !o.Reliable {
			r.Unreliable++
		}
	}
	n := float64(r.N)
	r.MAE = absSum / n
	r.RMSE = math.Sqrt(sqSum / n)
	r.Bias = errSum / n
	r.MeanTrue = trueSum / n
	r.MeanEstimate = estSum / n
	r.MeanItems = itemSum / n
	r.MeanEIQ = eiqSum / n
	return r
}

// SyntheticBank builds perItem items per section with difficulties spread
// evenly over [-3, 3] and discriminations cycling through [0.8, 2.0].
func SyntheticBank(version string, sections []itembank.Section, perSection int, guessing float64) (*itembank.Bank, error) {
	if perSection < 1 {
		return nil, fmt.Errorf("need at least one item per section, got %d", perSection)
	}
	items := make([]itembank.Item, 0, len(sections)*perSection)
	for _, sec := range sections {
		for j := range perSection {
			b := -3.0
			if perSection > 1 {
				b += 6 * float64(j) / float64(perSection-1)
			}
			items = append(items, itembank.Item{
				ID:      fmt.Sprintf("%s-%03d", sec, j+1),
				Section: sec,
				Params: itembank.Params{
					Discrimination: 0.8 + 0.3*float64(j%5),
					Difficulty:     b,
					Guessing:       guessing,
				},
				Content: itembank.Content{
					Prompt: fmt.Sprintf("Synthetic %s item %d", itembank.SectionDisplayName(sec), j+1),
					Answer: correctAnswer,
				},
			})
		}
	}
	return itembank.New(version, items)
}
