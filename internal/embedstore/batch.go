package embedstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrOOM is the sentinel an Embedder implementation should wrap when a
// batch call fails for a transient, size-dependent reason (out of GPU/
// host memory). encodeBatched treats it as retryable by halving the
// batch; any other error is fatal and bubbles up immediately, matching
// spec.md section 9's "Result-style return that distinguishes
// Transient(OOM) from Fatal".
var ErrOOM = errors.New("embedstore: transient out-of-memory during encode")

// TransientError wraps ErrOOM (or another transient cause) with the
// batch size that failed, so callers can log how far the halving went.
type TransientError struct {
	BatchSize int
	Err       error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient encode error at batch size %d: %v", e.BatchSize, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// encodeBatched embeds texts in chunks of batchSize, preserving the
// (text, vector) correspondence for whatever succeeds. On a transient
// (OOM) failure it halves the batch and retries; once batch size hits
// 1 and the single item still fails, that item is dropped (recorded in
// failed) and encoding continues with the rest, per spec.md section 7
// ("fail that item and continue the batch"). A non-transient error
// aborts the whole call.
func encodeBatched(ctx context.Context, emb Embedder, texts []string, batchSize int) (okTexts []string, vecs [][]float32, failed []string, err error) {
	if batchSize <= 0 {
		batchSize = 1
	}
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]
		gotTexts, got, skipped, berr := encodeOneBatch(ctx, emb, batch)
		if berr != nil {
			return okTexts, vecs, failed, berr
		}
		okTexts = append(okTexts, gotTexts...)
		vecs = append(vecs, got...)
		failed = append(failed, skipped...)
	}
	return okTexts, vecs, failed, nil
}

// encodeOneBatch embeds a single batch, halving on OOM down to
// single-item granularity.
func encodeOneBatch(ctx context.Context, emb Embedder, batch []string) (okTexts []string, vecs [][]float32, failed []string, err error) {
	got, err := emb.EmbedBatch(ctx, batch)
	if err == nil {
		return append([]string(nil), batch...), got, nil, nil
	}
	if !errors.Is(err, ErrOOM) {
		return nil, nil, nil, fmt.Errorf("encode batch of %d: %w", len(batch), err)
	}
	if len(batch) == 1 {
		// Single item still OOMs: drop it and move on.
		return nil, nil, []string{batch[0]}, nil
	}
	half := len(batch) / 2
	leftTexts, left, leftFailed, err := encodeOneBatch(ctx, emb, batch[:half])
	if err != nil {
		return nil, nil, nil, err
	}
	rightTexts, right, rightFailed, err := encodeOneBatch(ctx, emb, batch[half:])
	if err != nil {
		return nil, nil, nil, err
	}
	return append(leftTexts, rightTexts...), append(left, right...), append(leftFailed, rightFailed...), nil
}
