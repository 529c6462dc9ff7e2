package methods

import (
	"context"
	"fmt"

	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
)

// resolveHeight asks the archive for its current height, converting a
// lookup failure into an error every caller wraps identically.
func (e *Env) resolveHeight(ctx context.Context) (uint64, error) {
	height, err := e.Archive.Height(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve archive height: %w", err)
	}
	return height, nil
}

// resolveBlockTag resolves a single inclusive block tag against the
// archive's current height. pending is rejected explicitly: this
// gateway has no mempool view to answer it from.
func (e *Env) resolveBlockTag(ctx context.Context, tag rpctypes.BlockNumber) (uint64, error) {
	if tag.Tag == rpctypes.TagPending {
		return 0, fmt.Errorf("%w", errPendingUnsupported)
	}
	height, err := e.resolveHeight(ctx)
	if err != nil {
		return 0, err
	}
	n, err := tag.Resolve(height)
	if err != nil {
		return 0, err
	}
	if n > height {
		return 0, fmt.Errorf("%w: block %d is beyond head %d", errBlockBeyondHead, n, height)
	}
	return n, nil
}

var (
	errPendingUnsupported = fmt.Errorf("the \"pending\" block tag is not supported")
	errBlockBeyondHead    = fmt.Errorf("requested block is beyond the current head")
)
