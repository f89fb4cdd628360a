package findings

import (
	"context"
	"net/url"
	"sync"
	"time"

	"sonartools.dev/sonar-tools/internal/sonar"
)

// DefaultChangelogWorkers is the number of concurrent changelog fetches
const DefaultChangelogWorkers = 8

var zeroTime time.Time

// FetchChangelog retrieves and attaches the changelog of the finding
// (one API call per finding)
func (f *Finding) FetchChangelog(ctx context.Context, client *sonar.Client) error {
	params := url.Values{}
	params.Set("issue", f.Key)
	var payload struct {
		Changelog []struct {
			User         string `json:"user"`
			CreationDate string `json:"creationDate"`
		} `json:"changelog"`
	}
	if err := client.Get(ctx, "issues/changelog", params, &payload); err != nil {
		return err
	}
	f.changelog = f.changelog[:0]
	for _, c := range payload.Changelog {
		f.changelog = append(f.changelog, ChangelogEntry{User: c.User, Date: c.CreationDate})
	}
	return nil
}

// CollectChangelogs performs a mass collection of finding changelogs over a
// bounded pool of workers. Findings not modified after addedAfter are
// skipped. The first error aborts the collection.
func CollectChangelogs(ctx context.Context, client *sonar.Client, list []*Finding, addedAfter time.Time, workers int) error {
	if len(list) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = DefaultChangelogWorkers
	}

	queue := make(chan *Finding)
	errOnce := sync.Once{}
	var firstErr error
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range queue {
				if !addedAfter.IsZero() && addedAfter.After(f.UpdateDate) {
					continue
				}
				if err := f.FetchChangelog(ctx, client); err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
			}
		}()
	}

feed:
	for _, f := range list {
		select {
		case <-ctx.Done():
			break feed
		case queue <- f:
		}
	}
	close(queue)
	wg.Wait()
	return firstErr
}
