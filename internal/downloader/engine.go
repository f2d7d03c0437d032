package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tanq16/rangedl/internal/output"
	"github.com/tanq16/rangedl/internal/scheduler"
	"github.com/tanq16/rangedl/internal/utils"
)

type Engine struct {
	client   utils.HTTPDoer
	base     zerolog.Logger
	progress output.Reporter
	opts     Options
	limiter  *rate.Limiter
}

func NewEngine(client utils.HTTPDoer, logger zerolog.Logger, progress output.Reporter, opts Options) *Engine {
	if progress == nil {
		progress = output.Noop{}
	}
	if opts.Mode == "" {
		opts.Mode = ModeResume
	}
	return &Engine{
		client:   client,
		base:     logger,
		progress: progress,
		opts:     opts,
		limiter:  newBandwidthLimiter(opts.BandwidthLimit),
	}
}

// Download runs Probing -> (Ranged | Fallback) -> Finalizing -> Done.
//
// A returned error is pipeline-level: bad input, an existing target in
// refuse-if-exists mode, a file that cannot be opened, or a failed
// fallback stream. Chunk failures are reported in Result and only become
// an ErrIncomplete error when Options.Strict is set.
func (e *Engine) Download(ctx context.Context, task DownloadTask) (Result, error) {
	switch {
	case task.URL == "":
		return Result{}, ErrEmptyURL
	case task.TargetPath == "":
		return Result{}, ErrEmptyTarget
	case task.ChunkSize == 0:
		return Result{}, ErrInvalidChunkSize
	}

	res := Result{ID: uuid.NewString()}
	base := e.base.With().Str("id", res.ID).Logger()
	log := utils.ComponentLogger(base, "downloader/engine").With().Str("target", task.TargetPath).Logger()
	start := time.Now()

	if e.opts.Mode == ModeRefuseIfExists {
		if _, err := os.Stat(task.TargetPath); err == nil {
			return res, fmt.Errorf("%w: %s", ErrTargetExists, task.TargetPath)
		}
	}

	e.transition(log, StateProbing)
	res.TotalSize = ProbeSize(ctx, e.client, task.URL, base)

	var err error
	if res.TotalSize == 0 {
		log.Warn().Msg("Failed to fetch content length, falling back to streaming")
		res.Path = StateFallback
		e.transition(log, StateFallback)
		res.Written, err = e.streamFallback(ctx, task, base)
	} else {
		log.Info().Str("size", utils.FormatBytes(res.TotalSize)).Uint64("bytes", res.TotalSize).Msg("Total file size")
		res.Path = StateRanged
		e.transition(log, StateRanged)
		err = e.downloadRanged(ctx, task, &res, base)
		if err == nil && ctx.Err() != nil && len(res.Failed()) > 0 {
			err = fmt.Errorf("download interrupted: %w", ctx.Err())
		}
	}
	res.Elapsed = time.Since(start)

	e.transition(log, StateFinalizing)
	err = e.finalize(res, err, log)
	e.transition(log, StateDone)
	return res, err
}

func (e *Engine) downloadRanged(ctx context.Context, task DownloadTask, res *Result, base zerolog.Logger) error {
	log := utils.ComponentLogger(base, "downloader/ranged")
	existing, err := LocateResume(task.TargetPath)
	if err != nil {
		return err
	}
	res.ExistingBytes = existing
	ranges := PlanChunks(res.TotalSize, existing, task.ChunkSize)

	e.progress.SetTotal(res.TotalSize)
	e.progress.SetDownloaded(min(existing, res.TotalSize))
	e.progress.SetMessage("Downloading")
	if existing > 0 {
		log.Info().Uint64("existing", existing).Msg("Resuming from existing file")
	}
	if len(ranges) == 0 {
		log.Info().Msg("File already fully downloaded")
		return nil
	}

	sink, err := OpenFileSink(task.TargetPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	log.Debug().Int("chunks", len(ranges)).Int("workers", e.opts.Workers).Msg("Planned chunks")
	chunkLog := utils.ComponentLogger(base, "downloader/chunk")
	prog := &progressState{start: time.Now()}
	prog.position.Store(existing)
	res.Chunks = scheduler.Run(ctx, ranges, e.opts.Workers, func(ctx context.Context, r ChunkRange) ChunkResult {
		return e.downloadChunk(ctx, task.URL, r, sink, prog, chunkLog)
	})
	for _, c := range res.Chunks {
		res.Written += c.Written
	}
	return nil
}

func (e *Engine) finalize(res Result, err error, log zerolog.Logger) error {
	if err != nil {
		e.progress.Done("Download failed")
		log.Error().Err(err).Msg("Download failed")
		return err
	}

	failed := res.Failed()
	if len(failed) == 0 {
		e.progress.Done("Download complete")
		log.Info().Str("elapsed", res.Elapsed.Round(time.Millisecond).String()).
			Str("speed", utils.Throughput(res.Written, res.Elapsed)).
			Msg("Download completed successfully")
		return nil
	}

	e.progress.Done("Download incomplete")
	log.Warn().Int("failed", len(failed)).Int("chunks", len(res.Chunks)).Msg("Some chunks failed, file is incomplete")
	if !e.opts.Strict {
		return nil
	}
	errs := make([]error, 0, len(failed))
	for _, c := range failed {
		errs = append(errs, fmt.Errorf("range %s: %w", c.Range, c.Err))
	}
	return fmt.Errorf("%w: %d of %d chunks failed: %w", ErrIncomplete, len(failed), len(res.Chunks), errors.Join(errs...))
}

func (e *Engine) transition(log zerolog.Logger, s State) {
	log.Debug().Stringer("state", s).Msg("State transition")
}
