package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"research-pilot/config"
	"research-pilot/models"
	"research-pilot/providers"
	"research-pilot/storage"
)

// Runner orchestrates one pipeline invocation per topic: search, filter,
// analyze, summarize, identify gaps, compose proposal. Stage writes are not
// transactional with each other; a crash mid-run leaves partial artifacts
// with the status at the last completed stage, and the deferred handler
// writes a terminal failed status on any error.
type Runner struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	Providers []providers.Provider
	// S3Client enables archiving of composed documents; nil disables it.
	S3Client *s3.Client
}

// NewRunner creates a new pipeline runner.
func NewRunner(cfg *config.Config, db *gorm.DB, logger *zap.Logger, provs []providers.Provider, s3Client *s3.Client) *Runner {
	return &Runner{
		Config:    cfg,
		DB:        db,
		Logger:    logger,
		Providers: provs,
		S3Client:  s3Client,
	}
}

// Process runs the full pipeline for one topic and returns the number of
// retained papers. Returns gorm.ErrRecordNotFound when the id does not
// resolve; any later error leaves partial artifacts in place and the topic
// marked failed.
func (r *Runner) Process(ctx context.Context, topicID string) (papersFound int, err error) {
	log := r.Logger.With(zap.String("topic_id", topicID))

	var topic models.Topic
	if err := r.DB.First(&topic, "id = ?", topicID).Error; err != nil {
		return 0, err
	}

	defer func() {
		if err != nil {
			log.Error("Pipeline run failed", zap.Error(err))
			if dbErr := r.setStatus(topicID, models.StatusFailed); dbErr != nil {
				log.Error("Could not mark topic as failed", zap.Error(dbErr))
			}
		}
	}()

	log.Info("Starting pipeline run", zap.String("topic", topic.Text))

	// Re-running a topic replaces its previous artifacts.
	if err = r.clearArtifacts(topicID); err != nil {
		return 0, fmt.Errorf("clearing previous artifacts: %w", err)
	}
	if err = r.setStatus(topicID, models.StatusSearching); err != nil {
		return 0, err
	}

	domain := DetectDomain(topic.Text)
	log.Info("Domain detected", zap.String("domain", domain))

	queries := BuildQueries(topic.Text, domain)
	candidates := searchAll(ctx, log, r.Providers, queries, r.Config.SearchConcurrency)
	retained := FilterByRelevance(candidates, topic.Text, domain)
	log.Info("Search finished",
		zap.Int("queries", len(queries)),
		zap.Int("candidates", len(candidates)),
		zap.Int("retained", len(retained)))

	for _, sp := range retained {
		sp.Paper.TopicID = topicID
		if err = r.DB.Create(sp.Paper).Error; err != nil {
			return 0, fmt.Errorf("persisting paper %q: %w", sp.Paper.Title, err)
		}
	}
	if err = r.setStatus(topicID, models.StatusAnalyzing); err != nil {
		return 0, err
	}

	analyses := make([]Analysis, 0, len(retained))
	for _, sp := range retained {
		analyses = append(analyses, AnalyzeAbstract(sp.Paper.Title, sp.Paper.Abstract, sp.Score))
	}

	summaryText := ComposeSummary(analyses, topic.Text, domain)
	summary := models.Summary{TopicID: topicID, Content: summaryText}
	if err = r.DB.Create(&summary).Error; err != nil {
		return 0, fmt.Errorf("persisting summary: %w", err)
	}
	if err = r.setStatus(topicID, models.StatusRefining); err != nil {
		return 0, err
	}

	gaps := IdentifyGaps(retained, analyses, topic.Text)
	for i := range gaps {
		gaps[i].TopicID = topicID
		if err = r.DB.Create(&gaps[i]).Error; err != nil {
			return 0, fmt.Errorf("persisting research gap: %w", err)
		}
	}

	title, content := ComposeProposal(topic.Text, domain, retained, gaps, summaryText)
	proposal := models.Proposal{TopicID: topicID, Title: title, Content: content}
	r.archiveProposal(ctx, log, topicID, content, &proposal)
	if err = r.DB.Create(&proposal).Error; err != nil {
		return 0, fmt.Errorf("persisting proposal: %w", err)
	}

	if err = r.setStatus(topicID, models.StatusCompleted); err != nil {
		return 0, err
	}

	log.Info("Pipeline run completed", zap.Int("papers_found", len(retained)))
	return len(retained), nil
}

// archiveProposal uploads the rendered document to the configured archive
// bucket. Archiving is best-effort and never fails the run.
func (r *Runner) archiveProposal(ctx context.Context, log *zap.Logger, topicID, content string, proposal *models.Proposal) {
	if r.S3Client == nil || !r.Config.ArchiveEnabled() {
		return
	}
	key := fmt.Sprintf("proposals/%s.md", topicID)
	link, err := storage.UploadDocument(ctx, r.S3Client, r.Config, key, []byte(content))
	if err != nil {
		log.Warn("Proposal archive upload failed", zap.Error(err))
		return
	}
	proposal.ArchiveURL = link
	log.Info("Proposal archived", zap.String("archive_url", link))
}

// FailStaleTopics marks topics as failed when they have been sitting in a
// non-terminal status for longer than the configured staleness window.
// Returns the number of topics swept.
func (r *Runner) FailStaleTopics() (int64, error) {
	cutoff := time.Now().Add(-time.Duration(r.Config.StaleAfterMinutes) * time.Minute)
	res := r.DB.Model(&models.Topic{}).
		Where("status NOT IN ?", []string{models.StatusCompleted, models.StatusFailed}).
		Where("updated_at < ?", cutoff).
		Update("status", models.StatusFailed)
	return res.RowsAffected, res.Error
}

func (r *Runner) setStatus(topicID, status string) error {
	return r.DB.Model(&models.Topic{}).Where("id = ?", topicID).Update("status", status).Error
}

func (r *Runner) clearArtifacts(topicID string) error {
	for _, m := range []interface{}{&models.Paper{}, &models.Summary{}, &models.ResearchGap{}, &models.Proposal{}} {
		if err := r.DB.Where("topic_id = ?", topicID).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
