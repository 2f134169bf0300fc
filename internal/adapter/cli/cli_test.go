package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dmaloney/deepscan/internal/adapter/cli"
	"github.com/dmaloney/deepscan/internal/domain"
	"github.com/dmaloney/deepscan/internal/usecase/detect"
)

type scannerStub struct {
	request      detect.Request
	batchRequest []detect.Request
	result       detect.Result
	entries      []detect.BatchEntry
	err          error
}

func (s *scannerStub) Detect(ctx context.Context, req detect.Request) (detect.Result, error) {
	s.request = req
	return s.result, s.err
}

func (s *scannerStub) DetectBatch(ctx context.Context, reqs []detect.Request) ([]detect.BatchEntry, error) {
	s.batchRequest = reqs
	return s.entries, s.err
}

func realResult() detect.Result {
	return detect.Result{
		Metadata: domain.VideoMetadata{Filename: "clip.mp4", Resolution: "1280x720", Duration: 4.2},
		Verdict: domain.Verdict{
			Classification: domain.ClassificationReal,
			Confidence:     92,
			Reasoning:      "No significant artifacts found.",
		},
	}
}

func TestScanCommandInvokesUseCase(t *testing.T) {
	stub := &scannerStub{result: realResult()}
	root := cli.NewRootCommand(cli.Dependencies{
		Scanner:  stub,
		Args:     cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
		Defaults: cli.Defaults{OutputDir: "reports", NumFrames: 10, Sampling: "uniform"},
		Version:  "v1.2.3",
	})

	root.SetArgs([]string{"scan", "video.mp4", "--frames", "24", "--sampling", "scene", "--workers", "2", "--output", "result.json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.request.VideoPath != "video.mp4" {
		t.Fatalf("expected video path video.mp4, got %s", stub.request.VideoPath)
	}
	if stub.request.NumFrames != 24 {
		t.Fatalf("expected 24 frames, got %d", stub.request.NumFrames)
	}
	if stub.request.Sampling != "scene" {
		t.Fatalf("expected scene sampling, got %s", stub.request.Sampling)
	}
	if stub.request.Workers != 2 {
		t.Fatalf("expected 2 workers, got %d", stub.request.Workers)
	}
	if !stub.request.WriteJSON || stub.request.JSONPath != "result.json" {
		t.Fatalf("expected JSON output at result.json, got %+v", stub.request)
	}
	if stub.request.WriteText {
		t.Fatalf("expected no text output without --output-txt")
	}
	if stub.request.OutputDir != "reports" {
		t.Fatalf("expected default output dir reports, got %s", stub.request.OutputDir)
	}
}

func TestScanCommandPrintsConsoleReport(t *testing.T) {
	stub := &scannerStub{result: realResult()}
	buf := &bytes.Buffer{}
	root := cli.NewRootCommand(cli.Dependencies{
		Scanner: stub,
		Args:    cli.Arguments{OutWriter: buf, ErrWriter: io.Discard},
		Version: "v1.2.3",
	})

	root.SetArgs([]string{"scan", "video.mp4"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "DEEPFAKE DETECTION ANALYSIS REPORT") {
		t.Fatalf("expected console report banner, got: %s", output)
	}
	if !strings.Contains(output, "Classification: REAL") {
		t.Fatalf("expected classification line, got: %s", output)
	}
}

func TestScanCommandQuietSuppressesOutput(t *testing.T) {
	stub := &scannerStub{result: realResult()}
	buf := &bytes.Buffer{}
	root := cli.NewRootCommand(cli.Dependencies{
		Scanner: stub,
		Args:    cli.Arguments{OutWriter: buf, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"scan", "video.mp4", "--quiet"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if buf.Len() != 0 {
		t.Fatalf("expected no console output in quiet mode, got: %s", buf.String())
	}
}

func TestScanCommandExitCodes(t *testing.T) {
	tests := []struct {
		name           string
		classification domain.Classification
		wantCode       int
	}{
		{"real exits zero", domain.ClassificationReal, 0},
		{"likely real exits zero", domain.ClassificationLikelyReal, 0},
		{"fake exits one", domain.ClassificationFake, 1},
		{"likely fake exits one", domain.ClassificationLikelyFake, 1},
		{"uncertain exits two", domain.ClassificationUncertain, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &scannerStub{result: detect.Result{
				Verdict: domain.Verdict{Classification: tt.classification},
			}}
			root := cli.NewRootCommand(cli.Dependencies{
				Scanner: stub,
				Args:    cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
			})

			root.SetArgs([]string{"scan", "video.mp4", "--quiet"})
			err := root.Execute()

			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("expected clean exit, got %v", err)
				}
				return
			}

			var status *cli.ExitStatus
			if !errors.As(err, &status) {
				t.Fatalf("expected exit status error, got %v", err)
			}
			if status.Code != tt.wantCode {
				t.Fatalf("expected exit code %d, got %d", tt.wantCode, status.Code)
			}
		})
	}
}

func TestScanCommandPropagatesFailure(t *testing.T) {
	stub := &scannerStub{err: errors.New("ffprobe not found")}
	root := cli.NewRootCommand(cli.Dependencies{
		Scanner: stub,
		Args:    cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"scan", "video.mp4"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "ffprobe not found") {
		t.Fatalf("expected detection failure to propagate, got %v", err)
	}

	var status *cli.ExitStatus
	if errors.As(err, &status) {
		t.Fatalf("failures should not carry verdict exit codes, got %v", status)
	}
}

func TestBatchCommandPrintsSummary(t *testing.T) {
	stub := &scannerStub{entries: []detect.BatchEntry{
		{
			VideoPath: "a.mp4",
			Result: detect.Result{
				Metadata: domain.VideoMetadata{Filename: "a.mp4"},
				Verdict:  domain.Verdict{Classification: domain.ClassificationFake, Confidence: 88},
			},
		},
		{
			VideoPath: "b.mp4",
			Result: detect.Result{
				Metadata: domain.VideoMetadata{Filename: "b.mp4"},
				Verdict:  domain.Verdict{Classification: domain.ClassificationReal, Confidence: 90},
			},
		},
		{
			VideoPath: "c.mp4",
			Err:       errors.New("decode failed"),
		},
	}}

	buf := &bytes.Buffer{}
	root := cli.NewRootCommand(cli.Dependencies{
		Scanner: stub,
		Args:    cli.Arguments{OutWriter: buf, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"batch", "a.mp4", "b.mp4", "c.mp4"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"BATCH PROCESSING SUMMARY",
		"a.mp4: Fake (88% confidence)",
		"b.mp4: Real (90% confidence)",
		"Total: 3",
		"Fake/Likely Fake: 1",
		"Real/Likely Real: 1",
		"Uncertain: 0",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected summary to contain %q, got: %s", want, output)
		}
	}

	if len(stub.batchRequest) != 3 {
		t.Fatalf("expected 3 batch requests, got %d", len(stub.batchRequest))
	}
}

func TestBatchCommandWritesJSONWhenOutputDirSet(t *testing.T) {
	stub := &scannerStub{entries: []detect.BatchEntry{}}
	root := cli.NewRootCommand(cli.Dependencies{
		Scanner: stub,
		Args:    cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"batch", "a.mp4", "--output-dir", "results", "--quiet"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if len(stub.batchRequest) != 1 {
		t.Fatalf("expected one batch request, got %d", len(stub.batchRequest))
	}
	if !stub.batchRequest[0].WriteJSON || stub.batchRequest[0].OutputDir != "results" {
		t.Fatalf("expected JSON output under results, got %+v", stub.batchRequest[0])
	}
}

func TestVersionFlagEmitsVersion(t *testing.T) {
	stub := &scannerStub{}
	buf := &bytes.Buffer{}
	root := cli.NewRootCommand(cli.Dependencies{
		Scanner: stub,
		Args:    cli.Arguments{OutWriter: buf, ErrWriter: io.Discard},
		Version: "v9.9.9",
	})

	root.SetArgs([]string{"--version"})
	err := root.Execute()
	if !errors.Is(err, cli.ErrVersionRequested) {
		t.Fatalf("expected version sentinel, got %v", err)
	}
	if !strings.Contains(buf.String(), "v9.9.9") {
		t.Fatalf("expected version output, got %s", buf.String())
	}
}
