// Package selection picks the next item to administer by maximum Fisher
// information at the current ability estimate.
package selection

import (
	"errors"
	"math"

	"github.com/abhisek/adaptiq/internal/irt"
	"github.com/abhisek/adaptiq/internal/itembank"
)

// ErrNoItemAvailable is returned when no candidate remains.
var ErrNoItemAvailable = errors.New("no item available")

// ParamsOf converts an item's calibration to the estimator's form.
func ParamsOf(it itembank.Item) irt.Params {
	return irt.Params{
		A: it.Params.Discrimination,
		B: it.Params.Difficulty,
		C: it.Params.Guessing,
	}
}

// SelectNext returns the most informative candidate at theta. Candidates in
// recent are only considered when every other candidate is also recent.
// Ties are broken by the smallest |b - theta|, then by item id.
func SelectNext(theta float64, candidates []itembank.Item, recent map[string]bool) (itembank.Item, error) {
	if len(candidates) == 0 {
		return itembank.Item{}, ErrNoItemAvailable
	}

	fresh := make([]itembank.Item, 0, len(candidates))
	for _, it := range candidates {
		if !recent[it.ID] {
			fresh = append(fresh, it)
		}
	}
	if len(fresh) > 0 {
		return best(theta, fresh), nil
	}
	return best(theta, candidates), nil
}

type scored struct {
	Item        itembank.Item
	Information float64
}

func best(theta float64, items []itembank.Item) itembank.Item {
	top := scored{Item: items[0], Information: irt.Information(theta, ParamsOf(items[0]))}
	for _, it := range items[1:] {
		cand := scored{Item: it, Information: irt.Information(theta, ParamsOf(it))}
		if better(theta, cand, top) {
			top = cand
		}
	}
	return top.Item
}

// informationEpsilon treats information values this close as equal so that
// floating-point noise does not defeat the deterministic tie-break.
const informationEpsilon = 1e-12

func better(theta float64, x, y scored) bool {
	if d := x.Information - y.Information; math.Abs(d) > informationEpsilon {
		return d > 0
	}
	dx := math.Abs(x.Item.Params.Difficulty - theta)
	dy := math.Abs(y.Item.Params.Difficulty - theta)
	if dx != dy {
		return dx < dy
	}
	return x.Item.ID < y.Item.ID
}
