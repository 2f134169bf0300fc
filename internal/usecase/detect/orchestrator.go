package detect

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmaloney/deepscan/internal/domain"
	"github.com/dmaloney/deepscan/internal/sampler"
)

// defaultWorkers bounds concurrent frame analysis when the caller does not
// configure a pool size.
const defaultWorkers = 4

// OrchestratorDeps captures the inbound dependencies for the orchestrator.
type OrchestratorDeps struct {
	Prober      MetadataProber
	Extractor   FrameExtractor
	Detector    ArtifactDetector
	Motion      MotionAnalyzer
	Synthesizer VerdictSynthesizer
	Registry    *sampler.Registry
	JSON        JSONWriter
	Text        TextWriter
	Store       Store  // Optional: persistence layer for detection history
	Logger      Logger // Optional: structured logging for warnings and info
	Workers     int    // Concurrent frame analyses; defaults to 4
}

// Request represents an inbound CLI request for one video.
type Request struct {
	VideoPath string
	NumFrames int
	Sampling  string
	OutputDir string
	JSONPath  string // Optional: explicit JSON report path
	TextPath  string // Optional: explicit text report path
	WriteJSON bool
	WriteText bool
	Detailed  bool // Include per-frame narratives in the text report
	Workers   int  // Optional: overrides the configured analysis concurrency
}

// Result captures the orchestrator outcome for one video.
type Result struct {
	Metadata       domain.VideoMetadata
	Verdict        domain.Verdict
	FrameReports   []domain.ArtifactReport
	Temporal       domain.TemporalReport
	SampledIndices []int
	JSONPath       string
	TextPath       string
}

// BatchEntry pairs one batch input with its outcome. Err is set when the
// video could not be analyzed; Result is valid otherwise.
type BatchEntry struct {
	VideoPath string
	Result    Result
	Err       error
}

// Orchestrator implements the detection flow: probe, sample, extract,
// analyze, synthesize, persist, report.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator wires the orchestrator dependencies. A missing Registry is
// auto-created with the built-in sampling strategies.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Registry == nil {
		deps.Registry = sampler.NewRegistry()
	}
	if deps.Workers <= 0 {
		deps.Workers = defaultWorkers
	}
	return &Orchestrator{deps: deps}
}

// validateDependencies checks that all required dependencies are present.
func (o *Orchestrator) validateDependencies() error {
	if o.deps.Prober == nil {
		return errors.New("metadata prober is required")
	}
	if o.deps.Extractor == nil {
		return errors.New("frame extractor is required")
	}
	if o.deps.Detector == nil {
		return errors.New("artifact detector is required")
	}
	if o.deps.Motion == nil {
		return errors.New("motion analyzer is required")
	}
	if o.deps.Synthesizer == nil {
		return errors.New("verdict synthesizer is required")
	}
	if o.deps.JSON == nil {
		return errors.New("json writer is required")
	}
	if o.deps.Text == nil {
		return errors.New("text writer is required")
	}
	// Store is optional
	// Logger is optional
	return nil
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.VideoPath) == "" {
		return errors.New("video path is required")
	}
	if req.NumFrames <= 0 {
		return errors.New("frame count must be positive")
	}
	return nil
}

// Detect runs the full detection flow for a single video.
func (o *Orchestrator) Detect(ctx context.Context, req Request) (Result, error) {
	if err := o.validateDependencies(); err != nil {
		return Result{}, err
	}
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	meta, err := o.deps.Prober.Probe(ctx, req.VideoPath)
	if err != nil {
		return Result{}, fmt.Errorf("probing %s: %w", req.VideoPath, err)
	}

	strategy, ok := o.deps.Registry.Sampler(req.Sampling)
	if !ok {
		return Result{}, fmt.Errorf("unknown sampling strategy %q (available: %s)",
			req.Sampling, strings.Join(o.deps.Registry.Names(), ", "))
	}

	indices := strategy.Sample(meta.TotalFrames, req.NumFrames, &meta)
	if len(indices) == 0 {
		return Result{}, fmt.Errorf("no frames to sample from %s", req.VideoPath)
	}

	frames, err := o.deps.Extractor.Extract(ctx, req.VideoPath, indices, meta)
	if err != nil {
		return Result{}, fmt.Errorf("extracting frames from %s: %w", req.VideoPath, err)
	}
	if len(frames) == 0 {
		return Result{}, fmt.Errorf("no frames could be decoded from %s", req.VideoPath)
	}
	if len(frames) < len(indices) {
		o.logWarning(ctx, "some frames could not be decoded", map[string]interface{}{
			"requested": len(indices),
			"decoded":   len(frames),
			"video":     req.VideoPath,
		})
	}

	for _, hook := range o.deps.Registry.Hooks() {
		hook.PreAnalysis(frames, meta)
	}

	workers := o.deps.Workers
	if req.Workers > 0 {
		workers = req.Workers
	}
	frameReports, err := o.analyzeFrames(ctx, frames, workers)
	if err != nil {
		return Result{}, err
	}

	for _, hook := range o.deps.Registry.Hooks() {
		hook.PostAnalysis(frameReports, meta)
	}

	temporal, err := o.deps.Motion.Analyze(frames)
	if err != nil {
		return Result{}, fmt.Errorf("temporal analysis of %s: %w", req.VideoPath, err)
	}

	verdict := o.deps.Synthesizer.Synthesize(frameReports, temporal, meta)

	// Store failures must not break a completed detection.
	if o.deps.Store != nil {
		o.persistRun(ctx, req, meta, verdict, frameReports, temporal)
	}

	result := Result{
		Metadata:       meta,
		Verdict:        verdict,
		FrameReports:   frameReports,
		Temporal:       temporal,
		SampledIndices: indices,
	}

	if req.WriteJSON {
		path, err := o.deps.JSON.Write(ctx, JSONArtifact{
			OutputDir:  req.OutputDir,
			OutputPath: req.JSONPath,
			Metadata:   meta,
			Verdict:    verdict,
			Frames:     frameReports,
			Temporal:   temporal,
			Sampling:   req.Sampling,
		})
		if err != nil {
			return Result{}, fmt.Errorf("json write failed: %w", err)
		}
		result.JSONPath = path
	}

	if req.WriteText {
		path, err := o.deps.Text.Write(ctx, TextArtifact{
			OutputDir:  req.OutputDir,
			OutputPath: req.TextPath,
			Metadata:   meta,
			Verdict:    verdict,
			Frames:     frameReports,
			Temporal:   temporal,
			Sampling:   req.Sampling,
			Detailed:   req.Detailed,
		})
		if err != nil {
			return Result{}, fmt.Errorf("text write failed: %w", err)
		}
		result.TextPath = path
	}

	return result, nil
}

// analyzeFrames fans frame analysis out across a bounded worker pool and
// collects the reports back in frame order.
func (o *Orchestrator) analyzeFrames(ctx context.Context, frames []domain.Frame, workers int) ([]domain.ArtifactReport, error) {
	var wg sync.WaitGroup
	resultsChan := make(chan struct {
		report domain.ArtifactReport
		err    error
	}, len(frames))
	sem := make(chan struct{}, workers)

	for _, frame := range frames {
		wg.Add(1)
		go func(frame domain.Frame) {
			defer func() {
				if r := recover(); r != nil {
					resultsChan <- struct {
						report domain.ArtifactReport
						err    error
					}{err: fmt.Errorf("frame %d analysis panicked: %v", frame.Index, r)}
				}
				wg.Done()
			}()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				resultsChan <- struct {
					report domain.ArtifactReport
					err    error
				}{err: err}
				return
			}

			report, err := o.deps.Detector.Detect(frame)
			resultsChan <- struct {
				report domain.ArtifactReport
				err    error
			}{report: report, err: err}
		}(frame)
	}

	wg.Wait()
	close(resultsChan)

	var reports []domain.ArtifactReport
	var errs []error
	for res := range resultsChan {
		if res.err != nil {
			errs = append(errs, res.err)
		} else {
			reports = append(reports, res.report)
		}
	}

	if len(errs) > 0 {
		var errMsgs []string
		for _, err := range errs {
			errMsgs = append(errMsgs, err.Error())
		}
		return nil, fmt.Errorf("%d frame(s) failed analysis: %s", len(errs), strings.Join(errMsgs, "; "))
	}

	// Goroutine completion order is arbitrary; restore frame order.
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].FrameIndex < reports[j].FrameIndex
	})
	return reports, nil
}

// persistRun writes the run record and its findings, warning on failure.
func (o *Orchestrator) persistRun(
	ctx context.Context,
	req Request,
	meta domain.VideoMetadata,
	verdict domain.Verdict,
	frameReports []domain.ArtifactReport,
	temporal domain.TemporalReport,
) {
	now := time.Now()
	runID := generateRunID(now, req.VideoPath)

	run := StoreRun{
		RunID:          runID,
		Timestamp:      now,
		Video:          req.VideoPath,
		Sampling:       req.Sampling,
		FramesAnalyzed: len(frameReports),
		Classification: verdict.Classification.String(),
		Confidence:     verdict.Confidence,
		CombinedScore:  verdict.Scores.Combined,
	}
	if err := o.deps.Store.CreateRun(ctx, run); err != nil {
		o.logWarning(ctx, "failed to create run record", map[string]interface{}{
			"runID": runID,
			"error": err.Error(),
		})
		return
	}

	var findings []StoreFinding
	ordinal := 0
	for _, fr := range frameReports {
		for _, finding := range fr.Findings {
			findings = append(findings, StoreFinding{
				FindingID:   generateFindingID(runID, ordinal),
				RunID:       runID,
				Source:      "visual",
				FrameIndex:  fr.FrameIndex,
				Description: finding,
			})
			ordinal++
		}
	}
	for _, finding := range temporal.Findings {
		findings = append(findings, StoreFinding{
			FindingID:   generateFindingID(runID, ordinal),
			RunID:       runID,
			Source:      "temporal",
			FrameIndex:  -1,
			Description: finding,
		})
		ordinal++
	}

	if len(findings) == 0 {
		return
	}
	if err := o.deps.Store.SaveFindings(ctx, findings); err != nil {
		o.logWarning(ctx, "failed to save findings", map[string]interface{}{
			"runID": runID,
			"count": len(findings),
			"error": err.Error(),
		})
	}
}

// DetectBatch analyzes several videos in sequence. A failed video is
// reported in its entry and does not stop the remaining ones; the batch
// only aborts when the context is canceled.
func (o *Orchestrator) DetectBatch(ctx context.Context, reqs []Request) ([]BatchEntry, error) {
	entries := make([]BatchEntry, 0, len(reqs))

	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return entries, err
		}

		result, err := o.Detect(ctx, req)
		if err != nil {
			o.logWarning(ctx, "video analysis failed", map[string]interface{}{
				"video": req.VideoPath,
				"error": err.Error(),
			})
			entries = append(entries, BatchEntry{VideoPath: req.VideoPath, Err: err})
			continue
		}
		entries = append(entries, BatchEntry{VideoPath: req.VideoPath, Result: result})
	}

	return entries, nil
}

func (o *Orchestrator) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogWarning(ctx, message, fields)
		return
	}
	log.Printf("warning: %s: %v\n", message, fields)
}
