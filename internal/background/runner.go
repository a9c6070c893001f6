package background

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"siteforge/internal/models"
	"siteforge/internal/redis"
	"siteforge/internal/repository"
)

// Runner manages the periodic registry reconciliation job: it refreshes the
// tenant lookup cache and reports drift between the registry and the
// generated site directories.
type Runner struct {
	repo      *repository.TenantRepository
	cache     *redis.Client
	sitesRoot string
	interval  time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
	ticker    *time.Ticker
}

// NewRunner creates a new background runner.
func NewRunner(repo *repository.TenantRepository, cache *redis.Client, sitesRoot string, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Runner{
		repo:      repo,
		cache:     cache,
		sitesRoot: sitesRoot,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background job processing.
func (r *Runner) Start() {
	log.Println("Starting background job runner...")

	r.ticker = time.NewTicker(r.interval)
	log.Printf("Tenant reconciliation job scheduled every %v", r.interval)

	r.wg.Add(1)
	go r.runReconcileJob()
}

// Stop gracefully stops all background jobs.
func (r *Runner) Stop() {
	log.Println("Stopping background job runner...")
	close(r.stopCh)
	if r.ticker != nil {
		r.ticker.Stop()
	}
	r.wg.Wait()
	log.Println("Background job runner stopped")
}

func (r *Runner) runReconcileJob() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ticker.C:
			r.reconcile()
		case <-r.stopCh:
			return
		}
	}
}

// reconcile walks the active tenants, re-warms the cache and logs tenants
// whose generated site directory is missing.
func (r *Runner) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page := 1
	for {
		tenants, total, err := r.repo.List(ctx, models.TenantStatusActive, page, 100)
		if err != nil {
			log.Printf("Reconciliation: failed to list tenants: %v", err)
			return
		}

		for i := range tenants {
			tenant := &tenants[i]
			if r.cache != nil {
				if err := r.cache.CacheTenant(ctx, tenant); err != nil {
					log.Printf("Reconciliation: failed to cache tenant %s: %v", tenant.Subdomain, err)
				}
			}
			siteDir := filepath.Join(r.sitesRoot, tenant.Subdomain)
			if _, err := os.Stat(siteDir); os.IsNotExist(err) {
				log.Printf("Reconciliation: active tenant %s has no generated site at %s", tenant.Subdomain, siteDir)
			}
		}

		if int64(page*100) >= total {
			return
		}
		page++
	}
}
