package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/aikhusus2025-ctrl/banana-x-veo3/pkg/assets"
)

// GenerateVideo submits a long-running video generation, polls the
// operation until it completes, and returns the download locator with
// the access key appended. The poll loop is bounded by ctx and by
// Options.PollTimeout; only the status check is retried, never the
// submission.
func (g *Gateway) GenerateVideo(ctx context.Context, prompt string, ref *assets.TransportAsset) (uri string, err error) {
	defer func(start time.Time) { observe("generate_video", start, err) }(time.Now())

	instance := predictInstance{Prompt: prompt}
	if ref != nil {
		instance.Image = &inlineImage{
			BytesBase64Encoded: ref.Data,
			MIMEType:           ref.MediaType,
		}
	}

	opName, err := g.rest.predictLongRunning(ctx, g.opts.VideoModel, predictRequest{
		Instances:  []predictInstance{instance},
		Parameters: predictParameters{SampleCount: 1},
	})
	if err != nil {
		return "", fmt.Errorf("submit video generation: %w", err)
	}
	g.log.Info("video generation submitted", "operation", opName)

	ctx, cancel := context.WithTimeout(ctx, g.opts.PollTimeout)
	defer cancel()

	ticker := time.NewTicker(g.opts.PollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("video generation %s: %w", opName, ctx.Err())
		case <-ticker.C:
		}

		op, err := g.rest.getOperation(ctx, opName)
		if err != nil {
			return "", fmt.Errorf("poll video generation: %w", err)
		}
		if !op.Done {
			g.log.Debug("video generation pending", "operation", opName, "attempt", attempt)
			continue
		}
		if op.Error != nil {
			return "", fmt.Errorf("%w: %s", ErrGenerationFailed, op.Error.Message)
		}
		return g.videoLocator(op)
	}
}

func (g *Gateway) videoLocator(op *operationStatus) (string, error) {
	if op.Response == nil || len(op.Response.GenerateVideoResponse.GeneratedSamples) == 0 {
		return "", fmt.Errorf("%w: operation completed without a download link", ErrGenerationFailed)
	}
	uri := op.Response.GenerateVideoResponse.GeneratedSamples[0].Video.URI
	if uri == "" {
		return "", fmt.Errorf("%w: operation completed without a download link", ErrGenerationFailed)
	}
	return uri + "&key=" + g.opts.APIKey, nil
}
