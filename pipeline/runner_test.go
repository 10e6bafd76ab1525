package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"research-pilot/config"
	"research-pilot/models"
	"research-pilot/providers"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	// A single connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	if err := db.AutoMigrate(&models.Topic{}, &models.Paper{}, &models.Summary{}, &models.ResearchGap{}, &models.Proposal{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

// stubProvider returns the same canned papers for every query, or an error
// when Err is set.
type stubProvider struct {
	Papers []*models.Paper
	Err    error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Search(ctx context.Context, query string) ([]*models.Paper, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*models.Paper, 0, len(s.Papers))
	for _, p := range s.Papers {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func testRunner(t *testing.T, db *gorm.DB, prov providers.Provider) *Runner {
	t.Helper()
	cfg := &config.Config{SearchConcurrency: 2, StaleAfterMinutes: 30}
	return NewRunner(cfg, db, zap.NewNop(), []providers.Provider{prov}, nil)
}

func createTopic(t *testing.T, db *gorm.DB, text string) models.Topic {
	t.Helper()
	topic := models.Topic{OwnerID: "owner-1", Text: text, Status: models.StatusPending}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("creating topic: %v", err)
	}
	return topic
}

func TestProcessPopulatedRun(t *testing.T) {
	db := testDB(t)
	topic := createTopic(t, db, "quantum error correction")

	prov := &stubProvider{Papers: []*models.Paper{
		{Title: "Quantum Error Correction Codes", Abstract: "We propose a method using a benchmark dataset. Results show gains. Future work remains.", Source: "stub"},
		{Title: "Unrelated Gardening Tips", Abstract: "How to grow tomatoes.", Source: "stub"},
	}}
	r := testRunner(t, db, prov)

	count, err := r.Process(context.Background(), topic.ID)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if count != 1 {
		t.Fatalf("papersFound = %d, want 1", count)
	}

	var reloaded models.Topic
	if err := db.First(&reloaded, "id = ?", topic.ID).Error; err != nil {
		t.Fatalf("reloading topic: %v", err)
	}
	if reloaded.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", reloaded.Status)
	}

	var papers []models.Paper
	db.Where("topic_id = ?", topic.ID).Find(&papers)
	if len(papers) != 1 || papers[0].Title != "Quantum Error Correction Codes" {
		t.Errorf("persisted papers = %+v", papers)
	}

	var summary models.Summary
	if err := db.First(&summary, "topic_id = ?", topic.ID).Error; err != nil {
		t.Fatalf("loading summary: %v", err)
	}
	if !strings.Contains(summary.Content, "# Literature Summary") {
		t.Errorf("summary content = %q", summary.Content)
	}

	var gapCount int64
	db.Model(&models.ResearchGap{}).Where("topic_id = ?", topic.ID).Count(&gapCount)
	if gapCount != 7 {
		t.Errorf("gap count = %d, want 7", gapCount)
	}

	var proposal models.Proposal
	if err := db.First(&proposal, "topic_id = ?", topic.ID).Error; err != nil {
		t.Fatalf("loading proposal: %v", err)
	}
	if proposal.Title != "Research Proposal: quantum error correction" {
		t.Errorf("proposal title = %q", proposal.Title)
	}
}

func TestProcessZeroResultsStillCompletes(t *testing.T) {
	db := testDB(t)
	topic := createTopic(t, db, "zzyzx frobnication")
	r := testRunner(t, db, &stubProvider{})

	count, err := r.Process(context.Background(), topic.ID)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if count != 0 {
		t.Errorf("papersFound = %d, want 0", count)
	}

	var reloaded models.Topic
	db.First(&reloaded, "id = ?", topic.ID)
	if reloaded.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", reloaded.Status)
	}

	var summary models.Summary
	if err := db.First(&summary, "topic_id = ?", topic.ID).Error; err != nil {
		t.Fatalf("loading summary: %v", err)
	}
	want := `No relevant papers were found for "zzyzx frobnication". Consider broadening the topic or rephrasing it with more common terminology.`
	if summary.Content != want {
		t.Errorf("summary = %q, want %q", summary.Content, want)
	}

	var gapCount int64
	db.Model(&models.ResearchGap{}).Where("topic_id = ?", topic.ID).Count(&gapCount)
	if gapCount != 7 {
		t.Errorf("gap count = %d, want 7", gapCount)
	}

	var proposalCount int64
	db.Model(&models.Proposal{}).Where("topic_id = ?", topic.ID).Count(&proposalCount)
	if proposalCount != 1 {
		t.Errorf("proposal count = %d, want 1", proposalCount)
	}
}

func TestProcessUnknownTopic(t *testing.T) {
	db := testDB(t)
	r := testRunner(t, db, &stubProvider{})

	_, err := r.Process(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestProcessFailingProviderDegradesToEmpty(t *testing.T) {
	db := testDB(t)
	topic := createTopic(t, db, "some topic")
	r := testRunner(t, db, &stubProvider{Err: errors.New("index unreachable")})

	count, err := r.Process(context.Background(), topic.ID)
	if err != nil {
		t.Fatalf("Process should not fail on provider errors: %v", err)
	}
	if count != 0 {
		t.Errorf("papersFound = %d, want 0", count)
	}

	var reloaded models.Topic
	db.First(&reloaded, "id = ?", topic.ID)
	if reloaded.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", reloaded.Status)
	}
}

func TestProcessRerunReplacesArtifacts(t *testing.T) {
	db := testDB(t)
	topic := createTopic(t, db, "graph neural networks")
	prov := &stubProvider{Papers: []*models.Paper{
		{Title: "Graph Neural Networks Survey", Abstract: "We propose a model evaluated on a dataset. Results show improvements.", Source: "stub"},
	}}
	r := testRunner(t, db, prov)

	if _, err := r.Process(context.Background(), topic.ID); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := r.Process(context.Background(), topic.ID); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var paperCount, summaryCount, gapCount, proposalCount int64
	db.Model(&models.Paper{}).Where("topic_id = ?", topic.ID).Count(&paperCount)
	db.Model(&models.Summary{}).Where("topic_id = ?", topic.ID).Count(&summaryCount)
	db.Model(&models.ResearchGap{}).Where("topic_id = ?", topic.ID).Count(&gapCount)
	db.Model(&models.Proposal{}).Where("topic_id = ?", topic.ID).Count(&proposalCount)

	if paperCount != 1 || summaryCount != 1 || gapCount != 7 || proposalCount != 1 {
		t.Errorf("after rerun: papers=%d summaries=%d gaps=%d proposals=%d, want 1/1/7/1",
			paperCount, summaryCount, gapCount, proposalCount)
	}
}

func TestFailStaleTopics(t *testing.T) {
	db := testDB(t)
	stale := createTopic(t, db, "stuck topic")
	fresh := createTopic(t, db, "fresh topic")
	done := createTopic(t, db, "finished topic")

	db.Model(&models.Topic{}).Where("id = ?", stale.ID).UpdateColumns(map[string]interface{}{
		"status":     models.StatusSearching,
		"updated_at": time.Now().Add(-2 * time.Hour),
	})
	db.Model(&models.Topic{}).Where("id = ?", done.ID).UpdateColumns(map[string]interface{}{
		"status":     models.StatusCompleted,
		"updated_at": time.Now().Add(-2 * time.Hour),
	})

	r := testRunner(t, db, &stubProvider{})
	swept, err := r.FailStaleTopics()
	if err != nil {
		t.Fatalf("FailStaleTopics: %v", err)
	}
	if swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}

	// Use a fresh struct per query: reusing one would carry the previous
	// primary key into the next query's conditions.
	var checkStale models.Topic
	db.First(&checkStale, "id = ?", stale.ID)
	if checkStale.Status != models.StatusFailed {
		t.Errorf("stale topic status = %q, want failed", checkStale.Status)
	}
	var checkFresh models.Topic
	db.First(&checkFresh, "id = ?", fresh.ID)
	if checkFresh.Status != models.StatusPending {
		t.Errorf("fresh topic status = %q, want pending", checkFresh.Status)
	}
	var checkDone models.Topic
	db.First(&checkDone, "id = ?", done.ID)
	if checkDone.Status != models.StatusCompleted {
		t.Errorf("completed topic status = %q, want completed", checkDone.Status)
	}
}

func TestDeleteTopicCascades(t *testing.T) {
	db := testDB(t)
	topic := createTopic(t, db, "graph neural networks")
	prov := &stubProvider{Papers: []*models.Paper{
		{Title: "Graph Neural Networks Survey", Abstract: "We propose a model evaluated on a dataset.", Source: "stub"},
	}}
	r := testRunner(t, db, prov)

	if _, err := r.Process(context.Background(), topic.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := db.Delete(&models.Topic{}, "id = ?", topic.ID).Error; err != nil {
		t.Fatalf("deleting topic: %v", err)
	}

	var paperCount, summaryCount, gapCount, proposalCount int64
	db.Model(&models.Paper{}).Where("topic_id = ?", topic.ID).Count(&paperCount)
	db.Model(&models.Summary{}).Where("topic_id = ?", topic.ID).Count(&summaryCount)
	db.Model(&models.ResearchGap{}).Where("topic_id = ?", topic.ID).Count(&gapCount)
	db.Model(&models.Proposal{}).Where("topic_id = ?", topic.ID).Count(&proposalCount)
	if paperCount+summaryCount+gapCount+proposalCount != 0 {
		t.Errorf("orphaned rows after cascade: papers=%d summaries=%d gaps=%d proposals=%d",
			paperCount, summaryCount, gapCount, proposalCount)
	}
}

func TestSearchAllDedupesByTitle(t *testing.T) {
	prov := &stubProvider{Papers: []*models.Paper{
		{Title: "Shared Title", Source: "stub"},
		{Title: "Other Title", Source: "stub"},
	}}

	got := searchAll(context.Background(), zap.NewNop(), []providers.Provider{prov}, []string{"q1", "q2", "q3"}, 2)
	if len(got) != 2 {
		t.Fatalf("merged %d papers, want 2 after dedupe", len(got))
	}
	if got[0].Title != "Shared Title" || got[1].Title != "Other Title" {
		t.Errorf("merge order = [%s, %s]", got[0].Title, got[1].Title)
	}
}

func TestBuildQueries(t *testing.T) {
	queries := BuildQueries("federated learning", "machine-learning")
	if queries[0] != "federated learning" {
		t.Errorf("first query = %q, want the raw topic", queries[0])
	}
	// raw topic + 5 methodology terms + 3 domain contexts
	if len(queries) != 9 {
		t.Errorf("query count = %d, want 9", len(queries))
	}

	generic := BuildQueries("something", "general")
	if len(generic) != 9 {
		t.Errorf("generic query count = %d, want 9", len(generic))
	}
	if generic[6] != "something applications" {
		t.Errorf("generic context query = %q", generic[6])
	}
}
