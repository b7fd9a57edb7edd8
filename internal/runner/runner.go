package runner

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/allocator"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/utils"
)

const runIDLength = 16

type SnapshotStore interface {
	Save(ctx context.Context, snapshot *domain.RunSnapshot) error
	Get(ctx context.Context, id string) (*domain.RunSnapshot, error)
}

type MailPublisher interface {
	Publish(ctx context.Context, msg *domain.MailMessage) error
}

// Runner 在后台执行遗传算法，并把每一代的进度写入 SnapshotStore
type Runner struct {
	store     SnapshotStore
	publisher MailPublisher
	metrics   *metrics.Metrics

	wg sync.WaitGroup
}

func New(store SnapshotStore, publisher MailPublisher, m *metrics.Metrics) *Runner {
	return &Runner{
		store:     store,
		publisher: publisher,
		metrics:   m,
	}
}

// Start 校验参数并启动一次运行，参数错误会在启动前以 *allocator.ConfigError 的形式返回
// notifyEmail 不为空时，运行结束后会发送一封结果邮件
func (r *Runner) Start(ctx context.Context, scenario *domain.Scenario, parameters *allocator.Parameters, notifyEmail string) (*domain.RunSnapshot, error) {
	a, err := allocator.New(parameters, scenario.Sites, scenario.Pool)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.RunSnapshot{
		ID:               utils.GenerateRandomToken(runIDLength),
		ScenarioID:       scenario.ID,
		ScenarioName:     scenario.Name,
		Status:           domain.RunStatusRunning,
		TotalGenerations: parameters.GenerationCount,
		FitnessHistory:   []float64{},
		StartedAt:        time.Now(),
	}

	if err := r.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	// 返回给调用方的是副本，后台运行时只修改自己持有的那一份
	started := *snapshot

	sites := slices.Clone(scenario.Sites)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(a, snapshot, sites, notifyEmail)
	}()

	return &started, nil
}

func (r *Runner) Get(ctx context.Context, id string) (*domain.RunSnapshot, error) {
	return r.store.Get(ctx, id)
}

// Wait 等待所有正在进行的运行结束
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) execute(a *allocator.Allocator, snapshot *domain.RunSnapshot, sites []domain.Site, notifyEmail string) {
	logger := slog.With("run", snapshot.ID, "scenario", snapshot.ScenarioID)
	start := time.Now()

	res, err := a.Run(func(generation int, total int, history []float64) {
		r.metrics.ObserveGeneration(history[len(history)-1])

		snapshot.Generation = generation
		snapshot.FitnessHistory = history
		if err := r.store.Save(context.Background(), snapshot); err != nil {
			// 进度写入失败不影响运行本身
			logger.Error("无法保存运行进度", "generation", generation, "error", err)
		}
	})

	finishedAt := time.Now()
	snapshot.FinishedAt = &finishedAt

	if err != nil {
		r.metrics.ObserveRun(metrics.StatusFailed, finishedAt.Sub(start))
		snapshot.Status = domain.RunStatusFailed
		snapshot.Error = err.Error()
		if err := r.store.Save(context.Background(), snapshot); err != nil {
			logger.Error("无法保存运行结果", "error", err)
		}
		logger.Error("运行失败", "error", err)
		return
	}

	r.metrics.ObserveRun(metrics.StatusFinished, finishedAt.Sub(start))
	snapshot.Status = domain.RunStatusFinished
	snapshot.FitnessHistory = res.FitnessHistory
	snapshot.Result = allocator.BuildResult(res.BestChromosome, res.BestScore, res.FitnessHistory, sites)
	if err := r.store.Save(context.Background(), snapshot); err != nil {
		logger.Error("无法保存运行结果", "error", err)
	}
	logger.Info("运行结束", "score", res.BestScore, "duration", finishedAt.Sub(start))

	if notifyEmail == "" {
		return
	}

	msg := &domain.MailMessage{
		Type: domain.MailTypeRunFinished,
		To:   notifyEmail,
		Data: domain.RunFinishedMailData{
			RunID:        snapshot.ID,
			ScenarioName: snapshot.ScenarioName,
			Score:        res.BestScore,
			Generations:  len(res.FitnessHistory),
			Allocations:  snapshot.Result.Allocations,
		},
	}
	if err := r.publisher.Publish(context.Background(), msg); err != nil {
		logger.Error("无法发送运行结果邮件", "error", err)
	}
}
