package batch

import (
	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
	"github.com/retailcore/commerce-batch/pkg/types/batch"
)

// validateRequest rejects whole-batch structural problems before anything is
// dispatched: an empty batch, a batch above the configured size cap, missing
// operation IDs, and duplicate operation IDs. The first problem found is
// returned. An unsupported operation type is not a structural problem; it
// fails only its own operation during execution.
func validateRequest[T any](req batch.BatchRequest[T], maxBatchSize int) error {
	n := len(req.Operations)
	if n == 0 {
		return apperrors.New(apperrors.ErrCodeEmptyBatch, "batch contains no operations")
	}
	if n > maxBatchSize {
		return apperrors.Newf(apperrors.ErrCodeBatchTooLarge,
			"batch size %d exceeds the maximum of %d operations", n, maxBatchSize)
	}

	seen := make(map[string]struct{}, n)
	for _, op := range req.Operations {
		if op.ID == "" {
			return apperrors.New(apperrors.ErrCodeMissingID, "operation is missing an id")
		}
		if _, dup := seen[op.ID]; dup {
			return apperrors.Newf(apperrors.ErrCodeDuplicateOperationID,
				"duplicate operation id %q", op.ID)
		}
		seen[op.ID] = struct{}{}
	}
	return nil
}
