// Package listener consumes build-finished events from the build backend and
// reconciles them into commit and solution records.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"psjudge_frontend/internal/builder"
	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"
	"psjudge_frontend/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const maxPercentage = 100

// ReportFetcher is the slice of the builder client reconciliation needs.
type ReportFetcher interface {
	BuildReport(ctx context.Context, uuid string) (*builder.Report, error)
}

// BuildListener pops build-finished messages from a queue and applies the
// resulting scores. Processing is at-most-once by policy: delivery removes
// the message, and a failed reconciliation is logged and dropped, never
// re-queued.
type BuildListener struct {
	rdb       *redis.Client
	solutions repository.SolutionRepository
	reports   ReportFetcher
	queueName string
}

func NewBuildListener(rdb *redis.Client, solutions repository.SolutionRepository, reports ReportFetcher, queueName string) *BuildListener {
	return &BuildListener{
		rdb:       rdb,
		solutions: solutions,
		reports:   reports,
		queueName: queueName,
	}
}

// buildFinishedMessage is the queue payload: the commit uuid under "key" and
// the build outcome under "succeed".
type buildFinishedMessage struct {
	Key     string `json:"key"`
	Succeed bool   `json:"succeed"`
}

func (l *BuildListener) Start(ctx context.Context) {
	log.Println("Build listener started, listening to queue:", l.queueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Build listener stopping...")
			return
		default:
			// Blocking pop from the build-finished queue.
			entry, err := l.rdb.BRPop(ctx, 0*time.Second, l.queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Build listener BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}
				log.Printf("ERROR: Failed to BRPop from queue '%s': %v", l.queueName, err)
				time.Sleep(5 * time.Second)
				continue
			}

			// entry is [queueName, payload]
			if len(entry) < 2 || entry[1] == "" {
				log.Println("WARN: BRPop returned empty build-finished payload.")
				continue
			}

			var msg buildFinishedMessage
			if err := json.Unmarshal([]byte(entry[1]), &msg); err != nil {
				log.Printf("ERROR: Malformed build-finished message %q: %v", entry[1], err)
				continue
			}
			l.OnBuildFinished(msg.Key, msg.Succeed)
		}
	}
}

// OnBuildFinished reacts to one build-completion event. It returns
// immediately; reconciliation runs in the background with errors logged and
// dropped, so a bad message never blocks the consume loop.
func (l *BuildListener) OnBuildFinished(uuid string, succeed bool) {
	status := "failed"
	if succeed {
		status = "succeed"
	}
	log.Printf("BuildListener: build %s %s", uuid, status)

	go func() {
		if err := l.processBuild(context.Background(), uuid, succeed); err != nil {
			log.Printf("ERROR: failed to process finished build %s: %v", uuid, err)
		}
	}()
}

func (l *BuildListener) processBuild(ctx context.Context, uuid string, succeed bool) error {
	commit, err := l.solutions.CommitByUUID(ctx, uuid)
	if err != nil {
		return common.Errorf("commit %s not found for finished build: %w", uuid, err)
	}
	if commit.Status.Terminal() {
		// Repeat delivery; the first result stands.
		log.Printf("WARN: commit %s already processed (status: %s), ignoring event", uuid, commit.Status)
		return nil
	}

	status := model.CommitStatusFailed
	score := 0
	if succeed {
		status = model.CommitStatusSucceed
		report, err := l.reports.BuildReport(ctx, uuid)
		if err != nil {
			return common.Errorf("failed to fetch build report %s: %w", uuid, err)
		}
		score = buildScore(report.TestsPassed, report.TestsTotal)
	}

	// The solution's score is overwritten with this build's score: the last
	// processed build wins, so out-of-order completion of two commits of one
	// solution can regress the displayed score.
	if err := l.solutions.ApplyBuildResult(ctx, uuid, status, score); err != nil {
		return common.Errorf("failed to apply result of build %s: %w", uuid, err)
	}

	log.Printf("INFO: build %s reconciled, status %s, score %d", uuid, status, score)
	return nil
}

// buildScore is the integer percentage of passed tests, 0 when the build
// reports no tests at all.
func buildScore(testsPassed, testsTotal int) int {
	if testsTotal <= 0 {
		return 0
	}
	return maxPercentage * testsPassed / testsTotal
}
