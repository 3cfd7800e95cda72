package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

func result(name string, success bool, latency float64, at time.Time) domain.ProbeResult {
	r := domain.ProbeResult{Integration: name, Success: success, LatencyMS: latency, CheckedAt: at}
	if !success {
		r.Reason = domain.ReasonConnectionError
		r.Error = "connection refused"
	}
	return r
}

func TestRecordCountersAndAverage(t *testing.T) {
	repo := NewRepositories().Stats
	ctx := context.Background()
	now := time.Now()

	for i, latency := range []float64{100, 200, 300} {
		success := i != 1
		if _, _, err := repo.Record(ctx, result("stripe", success, latency, now)); err != nil {
			t.Fatal(err)
		}
	}

	s, err := repo.Snapshot(ctx, "stripe")
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalChecks != 3 || s.SuccessfulChecks != 2 || s.FailedChecks != 1 {
		t.Fatalf("counters = %+v", s)
	}
	if s.TotalChecks != s.SuccessfulChecks+s.FailedChecks {
		t.Fatalf("counter invariant broken: %+v", s)
	}
	if s.AverageLatencyMS != 200 {
		t.Fatalf("average latency = %v", s.AverageLatencyMS)
	}
	if s.LastStatus != domain.HealthHealthy {
		t.Fatalf("last status = %s", s.LastStatus)
	}
	if s.LastError != "" {
		t.Fatalf("last error should clear on success, got %q", s.LastError)
	}
}

func TestRecordTransitionDetection(t *testing.T) {
	repo := NewRepositories().Stats
	ctx := context.Background()
	now := time.Now()

	_, flipped, _ := repo.Record(ctx, result("x", true, 10, now))
	if !flipped {
		t.Fatal("first probe should flip from unknown")
	}
	_, flipped, _ = repo.Record(ctx, result("x", true, 10, now))
	if flipped {
		t.Fatal("repeat healthy should not flip")
	}
	_, flipped, _ = repo.Record(ctx, result("x", false, 10, now))
	if !flipped {
		t.Fatal("healthy to unhealthy should flip")
	}
	s, _, _ := repo.Record(ctx, result("x", false, 10, now))
	if s.ConsecutiveFailures != 2 {
		t.Fatalf("consecutive failures = %d", s.ConsecutiveFailures)
	}
}

func TestRecordConcurrentInvariant(t *testing.T) {
	repo := NewRepositories().Stats
	ctx := context.Background()
	now := time.Now()

	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				repo.Record(ctx, result("shared", (w+i)%2 == 0, 50, now))
			}
		}(w)
	}
	wg.Wait()

	s, _ := repo.Snapshot(ctx, "shared")
	if s.TotalChecks != workers*perWorker {
		t.Fatalf("total = %d", s.TotalChecks)
	}
	if s.TotalChecks != s.SuccessfulChecks+s.FailedChecks {
		t.Fatalf("counter invariant broken: %+v", s)
	}
}

func TestRecordEmptyIntegration(t *testing.T) {
	repo := NewRepositories().Stats
	if _, _, err := repo.Record(context.Background(), domain.ProbeResult{}); err == nil {
		t.Fatal("empty integration should be rejected")
	}
}

func TestSnapshotUnknownIntegration(t *testing.T) {
	repo := NewRepositories().Stats
	s, err := repo.Snapshot(context.Background(), "never-probed")
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalChecks != 0 || s.LastStatus != domain.HealthUnknown {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestGlobalAggregates(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	now := time.Now()
	repos.Stats.Record(ctx, result("a", true, 100, now))
	repos.Stats.Record(ctx, result("a", true, 100, now))
	repos.Stats.Record(ctx, result("b", false, 300, now))

	g, err := repos.Stats.Global(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if g.Integrations != 2 || g.TotalChecks != 3 {
		t.Fatalf("global = %+v", g)
	}
	if g.SuccessRate < 0.66 || g.SuccessRate > 0.67 {
		t.Fatalf("success rate = %v", g.SuccessRate)
	}
}

func TestResultRepositoryRingAndOrder(t *testing.T) {
	repo := NewRepositories().Results
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < recentResultsCap+10; i++ {
		repo.Add(ctx, result("x", true, float64(i), base.Add(time.Duration(i)*time.Second)))
	}
	recent, err := repo.Recent(ctx, "x", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 5 {
		t.Fatalf("got %d results", len(recent))
	}
	if recent[0].LatencyMS != float64(recentResultsCap+9) {
		t.Fatalf("newest first expected, got %v", recent[0].LatencyMS)
	}
}

func TestResultRepositorySince(t *testing.T) {
	repo := NewRepositories().Results
	ctx := context.Background()
	base := time.Now()
	repo.Add(ctx, result("a", true, 1, base.Add(-10*time.Minute)))
	repo.Add(ctx, result("a", true, 2, base.Add(-1*time.Minute)))
	repo.Add(ctx, result("b", false, 3, base))

	rows, err := repo.Since(ctx, base.Add(-5*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
}

func TestAuditRepositoryCapped(t *testing.T) {
	repo := NewRepositories().Audits
	ctx := context.Background()
	for i := 0; i < auditCap+5; i++ {
		repo.Append(ctx, domain.AuditLog{AuditID: "id", ActionType: "monitor.start"})
	}
	rows, err := repo.Recent(ctx, auditCap+100)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != auditCap {
		t.Fatalf("got %d rows", len(rows))
	}
}
