package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gltfpipe/glboptimize/document"
	"github.com/gltfpipe/glboptimize/internal/draco"
	"github.com/gltfpipe/glboptimize/internal/merge"
	"github.com/gltfpipe/glboptimize/internal/perr"
	"github.com/gltfpipe/glboptimize/internal/pipelog"
	"github.com/gltfpipe/glboptimize/internal/prune"
	"github.com/gltfpipe/glboptimize/internal/quantize"
	"github.com/gltfpipe/glboptimize/internal/sanitize"
	"github.com/gltfpipe/glboptimize/internal/simplify"
	"github.com/gltfpipe/glboptimize/internal/texture"
	"github.com/gltfpipe/glboptimize/internal/workerpool"
)

// stepNames is the fixed schedule (spec §4.9): the two repair passes are
// unconditional, every step in between runs only when its Options.Enabled
// is true.
var stepNames = []string{
	"repair-input", "clean", "merge", "simplify", "quantize", "draco", "texture", "repair-output",
}

const defaultWorkerQueueSize = 64

// defaultWorkerCount is used when Options.WorkerCount is unset; runtime
// core counts vary too widely across deployment hosts to hardcode a
// single shared default any larger than this.
const defaultWorkerCount = 4

func workerCount(n int) int {
	if n <= 0 {
		return defaultWorkerCount
	}
	return n
}

// Execute runs the fixed eight-step pipeline over the glTF binary at
// inputPath and writes the optimized result to outputPath, reporting
// progress on sink if non-nil (spec §6 core entry point). It never
// returns a bare error for a pipeline-domain failure: those are carried
// in Result.Success/FailedStep/Steps instead, matching the scheduler's
// own "stop but still report" contract. An invalid option is discovered
// in its natural place in the step order — inside runStep, when that
// step's own Validate() runs — so a Result carries every step result up
// to and including the failed one (spec §8 failure isolation property),
// never skipping steps that would otherwise have run and succeeded.
// Callers that want to reject a malformed request before paying for a
// document read may call opts.Validate() themselves first; Execute does
// not do this on their behalf. A non-nil error return means the request
// itself could not be serviced at all — it never reached a point where a
// Result with a TaskID could be constructed.
func Execute(ctx context.Context, inputPath, outputPath string, opts Options, sink ProgressSink) (*Result, error) {
	taskID := uuid.New().String()

	result := &Result{TaskID: taskID}
	overallStart := time.Now()

	info, statErr := os.Stat(inputPath)
	if statErr == nil {
		result.OriginalSize = info.Size()
	}

	d, err := document.Read(inputPath)
	if err != nil {
		return nil, perr.InvalidFile(err)
	}

	pool := workerpool.New(workerCount(opts.WorkerCount), defaultWorkerQueueSize, 0)

	enabled := enabledSteps(opts)
	total := len(enabled)

	for i, step := range enabled {
		if err := ctx.Err(); err != nil {
			result.FailedStep = step
			result.Steps = append(result.Steps, StepResult{Step: step, Success: false, Error: perr.Cancelled(step)})
			result.Success = false
			result.ProcessingTimeMs = durationMs(overallStart)
			return result, nil
		}

		emit(sink, ProgressEvent{Step: step, Status: StatusStart, Index: i, Total: total})
		stepStart := time.Now()

		stats, stepErr := runStep(ctx, step, d, opts, pool)
		elapsed := durationMs(stepStart)

		if stepErr != nil {
			pipelog.Error("step failed", pipelog.StepFields(taskID, step, i, total)...)
			result.Steps = append(result.Steps, StepResult{Step: step, Success: false, DurationMs: elapsed, Error: stepErr})
			result.FailedStep = step
			result.Success = false
			emit(sink, ProgressEvent{Step: step, Status: StatusError, Index: i, Total: total, DurationMs: elapsed, Error: stepErr})
			result.ProcessingTimeMs = durationMs(overallStart)
			return result, nil
		}

		result.Steps = append(result.Steps, StepResult{Step: step, Success: true, DurationMs: elapsed, Stats: stats})
		emit(sink, ProgressEvent{Step: step, Status: StatusDone, Index: i, Total: total, DurationMs: elapsed})
	}

	var writeOpts []document.WriteOption
	if hasAnyDraco(d) {
		writeOpts = append(writeOpts, document.WithDracoEncoder(draco.Default()))
	}
	if err := document.Write(outputPath, d, writeOpts...); err != nil {
		result.FailedStep = "write"
		result.Success = false
		result.ProcessingTimeMs = durationMs(overallStart)
		result.Steps = append(result.Steps, StepResult{Step: "write", Success: false, Error: perr.WriteFailed(err)})
		return result, nil
	}

	result.Success = true
	result.OutputPath = outputPath
	result.ProcessingTimeMs = durationMs(overallStart)
	if outInfo, err := os.Stat(outputPath); err == nil {
		result.OptimizedSize = outInfo.Size()
	}
	if result.OriginalSize > 0 {
		result.CompressionRatio = float32(result.OptimizedSize) / float32(result.OriginalSize)
	} else {
		result.CompressionRatio = 1
	}
	return result, nil
}

// enabledSteps returns the subset of stepNames that actually run for
// opts: the two repair passes unconditionally, everything else gated by
// its own Enabled flag.
func enabledSteps(opts Options) []string {
	var out []string
	for _, name := range stepNames {
		switch name {
		case "repair-input", "repair-output":
			out = append(out, name)
		case "clean":
			if opts.Clean.Enabled {
				out = append(out, name)
			}
		case "merge":
			if opts.Merge.Enabled {
				out = append(out, name)
			}
		case "simplify":
			if opts.Simplify.Enabled {
				out = append(out, name)
			}
		case "quantize":
			if opts.Quantize.Enabled {
				out = append(out, name)
			}
		case "draco":
			if opts.Draco.Enabled {
				out = append(out, name)
			}
		case "texture":
			if opts.Texture.Enabled {
				out = append(out, name)
			}
		}
	}
	return out
}

func runStep(ctx context.Context, step string, d *document.Document, opts Options, pool *workerpool.Pool) (interface{}, error) {
	switch step {
	case "repair-input":
		return sanitize.RepairInput(d), nil
	case "repair-output":
		return sanitize.RepairOutput(d), nil
	case "clean":
		return prune.Clean(d, opts.Clean.toPruneOptions()), nil
	case "merge":
		return merge.New().Execute(d)
	case "simplify":
		return simplify.Simplify(ctx, d, opts.Simplify.toSimplifyOptions(), pool)
	case "quantize":
		return quantize.Quantize(d, opts.Quantize.toQuantizeOptions()), nil
	case "draco":
		return draco.Attach(d, opts.Draco.toDracoOptions())
	case "texture":
		return texture.Process(ctx, d, opts.Texture.toTextureOptions(), nil, pool)
	default:
		return nil, perr.Internal(nil)
	}
}

func hasAnyDraco(d *document.Document) bool {
	for _, mesh := range d.Meshes {
		for _, p := range mesh.Primitives {
			if p.Draco != nil {
				return true
			}
		}
	}
	return false
}

func emit(sink ProgressSink, ev ProgressEvent) {
	if sink != nil {
		sink(ev)
	}
}
