package domain

import "errors"

// ErrItemNotFound reports a move whose item id is absent from the expected
// source collection. Callers recover it locally; it never aborts a game.
var ErrItemNotFound = errors.New("item not found in source collection")

// Evaluate sums the contributions of the placed items and classifies the
// total against the target range, inclusive on both ends. Side-effect free.
func Evaluate(placed []Item, w Weights, r Rules) Evaluation {
	total := 0.0
	for _, it := range placed {
		total += w.Weight(it.Category)
	}

	verdict := VerdictInRange
	switch {
	case total < r.TargetMin:
		verdict = VerdictBelow
	case total > r.TargetMax:
		verdict = VerdictAbove
	}

	return Evaluation{Total: total, Verdict: verdict}
}

// MoveItem transfers the item with the given id from source to destination,
// returning the updated collections. The inputs are not mutated. When the id
// is absent from source, both collections are returned unchanged along with
// ErrItemNotFound, preserving the one-collection-ownership invariant.
func MoveItem(source, destination []Item, id string) ([]Item, []Item, error) {
	for i, it := range source {
		if it.ID != id {
			continue
		}
		newSource := make([]Item, 0, len(source)-1)
		newSource = append(newSource, source[:i]...)
		newSource = append(newSource, source[i+1:]...)

		newDestination := make([]Item, 0, len(destination)+1)
		newDestination = append(newDestination, destination...)
		newDestination = append(newDestination, it)

		return newSource, newDestination, nil
	}
	return source, destination, ErrItemNotFound
}
