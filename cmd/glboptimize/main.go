// Command glboptimize is a thin CLI shell over the optimization core: it
// reads an options file or a preset name, runs the pipeline against one
// input .glb, and reports per-step timings. It exists to exercise
// pipeline.Execute end to end; the HTTP/REST surface this core is meant
// to sit behind is out of scope here (see SPEC_FULL.md).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gltfpipe/glboptimize/internal/pipelinecfg"
	"github.com/gltfpipe/glboptimize/internal/pipelog"
	"github.com/gltfpipe/glboptimize/pipeline"
)

var (
	flagInput   = flag.String("in", "", "path to the input .glb")
	flagOutput  = flag.String("out", "", "path to write the optimized .glb")
	flagConfig  = flag.String("config", "", "path to a pipeline options YAML file")
	flagPreset  = flag.String("preset", "", "preset name (fast, balanced, maximum); ignored when -config is set")
	flagLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
	flagLogFile = flag.String("log-file", "", "optional rotating log file path")
)

func main() {
	flag.Parse()

	if err := pipelog.Init(*flagLevel, *flagLogFile); err != nil {
		log.Fatalf("glboptimize: init logger: %v", err)
	}
	defer pipelog.Sync()

	if *flagInput == "" || *flagOutput == "" {
		fmt.Fprintln(os.Stderr, "usage: glboptimize -in input.glb -out output.glb [-config cfg.yaml | -preset balanced]")
		os.Exit(2)
	}

	opts, err := resolveOptions()
	if err != nil {
		pipelog.Error(err.Error())
		log.Fatalf("glboptimize: %v", err)
	}

	result, err := pipeline.Execute(context.Background(), *flagInput, *flagOutput, opts, reportProgress)
	if err != nil {
		log.Fatalf("glboptimize: %v", err)
	}

	reportResult(result)
	if !result.Success {
		os.Exit(1)
	}
}

// resolveOptions turns -config or -preset into a pipeline.Options,
// preferring an explicit config file when both are set.
func resolveOptions() (pipeline.Options, error) {
	if *flagConfig != "" {
		_, opts, err := pipelinecfg.Load(*flagConfig)
		return opts, err
	}
	if *flagPreset != "" {
		return pipelinecfg.ResolvePreset(*flagPreset)
	}
	return pipeline.Options{}, fmt.Errorf("one of -config or -preset is required")
}

func reportProgress(ev pipeline.ProgressEvent) {
	switch ev.Status {
	case pipeline.StatusStart:
		pipelog.Info(fmt.Sprintf("step %q starting (%d/%d)", ev.Step, ev.Index+1, ev.Total))
	case pipeline.StatusDone:
		pipelog.Info(fmt.Sprintf("step %q done in %dms", ev.Step, ev.DurationMs))
	case pipeline.StatusError:
		pipelog.Error(fmt.Sprintf("step %q failed after %dms: %v", ev.Step, ev.DurationMs, ev.Error))
	}
}

func reportResult(result *pipeline.Result) {
	fmt.Printf("task %s: success=%v processing_time=%dms\n", result.TaskID, result.Success, result.ProcessingTimeMs)
	if !result.Success {
		fmt.Printf("  failed at step %q\n", result.FailedStep)
	} else {
		fmt.Printf("  %d -> %d bytes (ratio %.3f)\n", result.OriginalSize, result.OptimizedSize, result.CompressionRatio)
	}
	for _, s := range result.Steps {
		status := "ok"
		if !s.Success {
			status = "FAILED"
		}
		fmt.Printf("  - %-14s %-6s %5dms\n", s.Step, status, s.DurationMs)
	}
}
