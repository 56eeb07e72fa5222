package admin

import (
	"context"
	"errors"
)

var ErrEmptySelection = errors.New("admin: nothing selected")

// BulkResult is the one summary returned for a whole bulk action.
type BulkResult struct {
	Action    string            `json:"action"`
	Requested int               `json:"requested"`
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// ApplyBulk runs fn once per selected id in sorted order, then clears the selection.
// A failing id does not stop the rest.
func ApplyBulk(ctx context.Context, action string, sel *Selection, fn func(ctx context.Context, id string) error) (BulkResult, error) {
	ids := sel.IDs()
	if len(ids) == 0 {
		return BulkResult{Action: action}, ErrEmptySelection
	}
	res := BulkResult{Action: action, Requested: len(ids), Succeeded: make([]string, 0, len(ids))}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			res.fail(id, err)
			continue
		}
		if err := fn(ctx, id); err != nil {
			res.fail(id, err)
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	sel.Clear()
	return res, nil
}

func (r *BulkResult) fail(id string, err error) {
	if r.Failed == nil {
		r.Failed = map[string]string{}
	}
	r.Failed[id] = err.Error()
}
