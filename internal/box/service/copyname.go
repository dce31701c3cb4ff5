package service

import (
	"context"
	"errors"
	"fmt"

	id "dexrank/pkg/domain"
	dErrors "dexrank/pkg/domain-errors"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/box/models"
)

// maxCopyNameProbes bounds the suffix search when favoriting. A hundred
// copies of one box in a single collection means something else is wrong.
const maxCopyNameProbes = 100

// generateCopyName finds the first free name for a favorited copy in the
// requester's collection: the source name as-is, then "name (2)", "name (3)"
// and so on.
func generateCopyName(ctx context.Context, stores Stores, requesterID id.UserID, base string) (string, error) {
	candidate := base
	for probe := 1; probe <= maxCopyNameProbes; probe++ {
		_, err := stores.Boxes.FindByOwnerAndName(ctx, requesterID, candidate)
		if errors.Is(err, sentinel.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", translateStoreErr(err, "box")
		}
		candidate = suffixed(base, probe+1)
	}
	return "", dErrors.New(dErrors.CodeConflict, "no available name for the copied box")
}

// suffixed renders "base (n)", trimming base so the result stays within the
// name length bound.
func suffixed(base string, n int) string {
	suffix := fmt.Sprintf(" (%d)", n)
	if len(base)+len(suffix) > models.NameMaxLength {
		base = base[:models.NameMaxLength-len(suffix)]
	}
	return base + suffix
}
