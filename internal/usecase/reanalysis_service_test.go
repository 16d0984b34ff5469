package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestReanalysisService_FillsMissingValues(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seedScreenshot(t, f, "s1", f.alpha.ID, 1, nil, intPtr(3), 3)
	seedScreenshot(t, f, "s2", f.alpha.ID, 1, intPtr(2), nil, 6)
	seedScreenshot(t, f, "s3", f.bravo.ID, 2, nil, nil, 0)
	seedScreenshot(t, f, "s4", f.bravo.ID, 2, intPtr(1), intPtr(4), 14)

	analyzer := &stubAnalyzer{byURL: map[string]AnalysisResult{
		"https://cdn.test/s1.png": {Placement: intPtr(1), Kills: intPtr(9)},
		"https://cdn.test/s2.png": {Placement: intPtr(7), Kills: intPtr(2)},
		"https://cdn.test/s3.png": {},
	}}
	invalidator := &recordingInvalidator{}
	svc := NewReanalysisService(f.tournaments, f.screenshots, analyzer, invalidator, 2, testLogger())

	out, err := svc.Reanalyze(context.Background(), f.tournament.ID)
	if err != nil {
		t.Fatalf("reanalyze: %v", err)
	}
	if out.Candidates != 3 || out.UpdatedCount != 2 || out.UnchangedCount != 1 || out.FailedCount != 0 || out.WorkerCount != 2 {
		t.Fatalf("unexpected result: %+v", out)
	}
	if len(analyzer.requests) != 3 {
		t.Fatalf("analyzed screenshots must be skipped, requests=%v", analyzer.requests)
	}

	s1, _, _ := f.screenshots.GetByID(context.Background(), "s1")
	if *s1.Placement != 1 || *s1.Kills != 3 || s1.Points != 13 {
		t.Fatalf("existing kills must be kept, got %+v", s1)
	}
	s2, _, _ := f.screenshots.GetByID(context.Background(), "s2")
	if *s2.Placement != 2 || *s2.Kills != 2 || s2.Points != 8 {
		t.Fatalf("existing placement must be kept, got %+v", s2)
	}
	if invalidator.count() != 1 {
		t.Fatalf("expected one invalidation, got %v", invalidator.calls)
	}
}

func TestReanalysisService_ReportsAnalyzerFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seedScreenshot(t, f, "s1", f.alpha.ID, 1, nil, nil, 0)

	invalidator := &recordingInvalidator{}
	svc := NewReanalysisService(f.tournaments, f.screenshots, &stubAnalyzer{err: errors.New("boom")}, invalidator, 0, testLogger())

	out, err := svc.Reanalyze(context.Background(), f.tournament.ID)
	if err != nil {
		t.Fatalf("reanalyze: %v", err)
	}
	if out.FailedCount != 1 || out.Items[0].Status != reanalysisStatusFailed || out.Items[0].Message == "" {
		t.Fatalf("unexpected result: %+v", out)
	}
	if out.WorkerCount != 1 {
		t.Fatalf("worker count should not exceed candidates, got %d", out.WorkerCount)
	}
	if invalidator.count() != 0 {
		t.Fatalf("nothing changed, got invalidations %v", invalidator.calls)
	}
}

func TestReanalysisService_NothingToDo(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewReanalysisService(f.tournaments, f.screenshots, &stubAnalyzer{}, nil, 4, testLogger())

	out, err := svc.Reanalyze(context.Background(), f.tournament.ID)
	if err != nil {
		t.Fatalf("reanalyze: %v", err)
	}
	if out.Candidates != 0 || len(out.Items) != 0 {
		t.Fatalf("unexpected result: %+v", out)
	}
	if _, err := svc.Reanalyze(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNormalizeReanalysisWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		requested, tasks, want int
	}{
		{0, 100, defaultReanalysisWorkers},
		{50, 100, maxReanalysisWorkers},
		{8, 3, 3},
		{2, 0, 2},
	}
	for _, tc := range tests {
		if got := normalizeReanalysisWorkers(tc.requested, tc.tasks); got != tc.want {
			t.Fatalf("normalize(%d, %d) = %d, want %d", tc.requested, tc.tasks, got, tc.want)
		}
	}
}

// blockingAnalyzer holds every call until release is closed.
type blockingAnalyzer struct {
	entered chan struct{}
	release chan struct{}
	result  AnalysisResult
}

func (a *blockingAnalyzer) Analyze(ctx context.Context, _ string) (AnalysisResult, error) {
	a.entered <- struct{}{}
	select {
	case <-a.release:
		return a.result, nil
	case <-ctx.Done():
		return AnalysisResult{}, ctx.Err()
	}
}

func TestReanalysisService_KeepsCorrectionMadeDuringAnalysis(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seedScreenshot(t, f, "s1", f.alpha.ID, 1, nil, nil, 0)

	analyzer := &blockingAnalyzer{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  AnalysisResult{Placement: intPtr(9), Kills: intPtr(0)},
	}
	reanalysis := NewReanalysisService(f.tournaments, f.screenshots, analyzer, nil, 1, testLogger())
	screenshots := newScreenshotServiceForTest(f, &stubAnalyzer{}, &stubObjectStore{}, nil)
	ctx := context.Background()

	done := make(chan ReanalysisResult, 1)
	go func() {
		out, err := reanalysis.Reanalyze(ctx, f.tournament.ID)
		if err != nil {
			t.Errorf("reanalyze: %v", err)
		}
		done <- out
	}()

	<-analyzer.entered
	if _, err := screenshots.Correct(ctx, CorrectScreenshotInput{ScreenshotID: "s1", Placement: intPtr(1), Kills: intPtr(5)}); err != nil {
		t.Fatalf("correct: %v", err)
	}
	close(analyzer.release)
	out := <-done

	if out.UpdatedCount != 0 || out.UnchangedCount != 1 {
		t.Fatalf("unexpected result: %+v", out)
	}
	got, _, _ := f.screenshots.GetByID(ctx, "s1")
	if *got.Placement != 1 || *got.Kills != 5 || got.Points != 15 {
		t.Fatalf("correction overwritten: placement=%d kills=%d points=%d", *got.Placement, *got.Kills, got.Points)
	}
}
