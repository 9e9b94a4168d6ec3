//go:build test

package suggest

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var memPatterns = [][]string{
	{"g", "gr", "gri", "grin", "grinning"},
	{"c", "ca", "cat", "cat f", "cat face"},
	{"h", "he", "hea", "hear", "heart"},
	{"s", "sm", "smi", "smil", "smiling eyes"},
	{"t", "th", "thu", "thumbs", "thumbs up"},
}

var memWords = []string{"grinning", "cat", "face", "heart", "smiling", "eyes", "thumbs", "up", "red", "star"}

// syntheticCatalog builds n items named from memWords.
func syntheticCatalog(n int) []catalog.Item {
	items := make([]catalog.Item, n)
	for i := range items {
		name := fmt.Sprintf("%s %s %d", memWords[i%len(memWords)], memWords[(i/len(memWords))%len(memWords)], i)
		items[i] = catalog.Item{Base: catalog.Emoji{
			String:   fmt.Sprintf("e%d", i),
			Name:     name,
			Keywords: []string{memWords[(i+3)%len(memWords)]},
		}}
	}
	return items
}

func TestMemoryLeakBasic(t *testing.T) {
	for _, iterations := range []int{100, 500, 1000} {
		t.Run(fmt.Sprintf("iterations_%d", iterations), func(t *testing.T) {
			ix := NewIndex(256)
			ix.SetCollection(syntheticCatalog(4000))

			var baseline runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&baseline)
			baselineGoroutines := runtime.NumGoroutine()

			totalOps := 0
			for i := 0; i < iterations; i++ {
				for _, pattern := range memPatterns {
					for _, query := range pattern {
						_ = ix.Search(query, 24)
						totalOps++
					}
				}
			}

			var final runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&final)

			memDelta := int64(final.Alloc) - int64(baseline.Alloc)
			memPerOp := float64(memDelta) / float64(totalOps)
			goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
			t.Logf("ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d", totalOps, memDelta, memPerOp, goroutineDelta)

			if memPerOp > 1000 {
				t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
			}
			if goroutineDelta > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
			}
		})
	}
}

// Searches race collection swaps; every result must come from one snapshot.
func TestMemoryLeakConcurrentSwap(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 400},
		{workers: 4, iterationsPerWorker: 100},
		{workers: 8, iterationsPerWorker: 50},
	}

	small, large := syntheticCatalog(200), syntheticCatalog(3000)

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			ix := NewIndex(64)
			ix.SetCollection(large)

			var baseline runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&baseline)
			baselineGoroutines := runtime.NumGoroutine()

			stop := make(chan struct{})
			var swapper sync.WaitGroup
			swapper.Add(1)
			go func() {
				defer swapper.Done()
				for i := 0; ; i++ {
					select {
					case <-stop:
						return
					default:
					}
					if i%2 == 0 {
						ix.SetCollection(small)
					} else {
						ix.SetCollection(large)
					}
				}
			}()

			var wg sync.WaitGroup
			errs := make(chan string, config.workers)
			for w := 0; w < config.workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for iter := 0; iter < config.iterationsPerWorker; iter++ {
						for _, pattern := range memPatterns {
							for _, query := range pattern {
								results := ix.Search(query, 24)
								for i := 1; i < len(results); i++ {
									if results[i].Score > results[i-1].Score {
										errs <- fmt.Sprintf("unordered results for %q", query)
										return
									}
								}
							}
						}
					}
				}()
			}
			wg.Wait()
			close(stop)
			swapper.Wait()
			close(errs)
			for msg := range errs {
				t.Error(msg)
			}

			var final runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&final)
			goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
			t.Logf("workers=%d mem_delta=%d bytes goroutine_delta=%d",
				config.workers, int64(final.Alloc)-int64(baseline.Alloc), goroutineDelta)

			if goroutineDelta > 3 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
			}
		})
	}
}
