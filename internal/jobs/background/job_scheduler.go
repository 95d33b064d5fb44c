package background

import (
	"context"
	"log"
	"sync"
	"time"

	"rentledger/internal/caching"
	"rentledger/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring maintenance jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	billRepo  repositories.BillRepository
	cacheSvc  caching.CacheService
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(billRepo repositories.BillRepository, cacheSvc caching.CacheService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		billRepo:  billRepo,
		cacheSvc:  cacheSvc,
		jobs:      make(map[string]gocron.Job),
	}

	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Overdue sweep - hourly. Reads already derive overdue on the fly,
	// the sweep converges the stored rows so filters and exports agree.
	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepOverdueBills, context.Background()),
		gocron.WithName("overdue-bill-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create overdue sweep job: %v", err)
	} else {
		js.jobs["overdue-sweep"] = overdueJob
	}

	// Stats cache refresh - every 6 hours.
	cacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(js.refreshStatsCache, context.Background()),
		gocron.WithName("stats-cache-refresh"),
	)
	if err != nil {
		log.Printf("Failed to create cache refresh job: %v", err)
	} else {
		js.jobs["cache-refresh"] = cacheJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) sweepOverdueBills(ctx context.Context) error {
	swept, err := js.billRepo.MarkOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return err
	}
	if swept > 0 {
		log.Printf("Overdue sweep marked %d bills overdue", swept)
		if err := js.cacheSvc.InvalidateAllCache(ctx); err != nil {
			log.Printf("Failed to invalidate stats cache after sweep: %v", err)
		}
	}
	return nil
}

func (js *JobScheduler) refreshStatsCache(ctx context.Context) error {
	// Cached stats carry a TTL already, the periodic drop just bounds
	// staleness when writes happen outside this process.
	if err := js.cacheSvc.InvalidateAllCache(ctx); err != nil {
		log.Printf("Stats cache refresh failed: %v", err)
		return err
	}
	return nil
}

// AddJob registers a custom job at runtime.
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	return nil
}

// JobStatus reports the registered job names.
func (js *JobScheduler) JobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
