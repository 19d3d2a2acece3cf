package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
)

// MatchAnalysis describes one pairwise citation comparison.
type MatchAnalysis struct {
	Citation1           string `json:"citation1"`
	Citation2           string `json:"citation2"`
	SameLaw             bool   `json:"same_law"`
	SameArticle         bool   `json:"same_article"`
	Law1                string `json:"law1"`
	Law2                string `json:"law2"`
	Articles1           []int  `json:"articles1"`
	Articles2           []int  `json:"articles2"`
	OverlappingArticles []int  `json:"overlapping_articles"`
}

// MatchRecord is one line of the match output stream.
type MatchRecord struct {
	Element1 string        `json:"element1"`
	Element2 string        `json:"element2"`
	Analysis MatchAnalysis `json:"analysis"`
}

// CompareResult aggregates a comparison pass.
type CompareResult struct {
	Comparisons        int64 `json:"comparisons"`
	SameArticleMatches int64 `json:"same_article_matches"`
}

// Progress receives running counters while a comparison pass executes.
type Progress func(done, total, matches int64)

// CompareGroups compares every citation pair within each law group and
// streams one JSON record per pair to out. Groups are processed by a bounded
// worker pool; each worker serializes its group into a local buffer before
// taking the writer lock, so the inner pair loop never contends. Pairs from
// the same element are skipped: an element trivially matches itself.
func CompareGroups(ctx context.Context, groups Groups, out io.Writer, workers int, progress Progress) (CompareResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	total := groups.ExpectedComparisons()

	// Sorted keys keep the feeding order stable between runs.
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var (
		done     atomic.Int64
		matches  atomic.Int64
		writeMu  sync.Mutex
		writeErr error
		wg       sync.WaitGroup
	)
	tasks := make(chan string)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			for law := range tasks {
				buf.Reset()
				pairs, groupMatches := compareGroup(law, groups[law], enc)
				done.Add(pairs)
				matches.Add(groupMatches)

				writeMu.Lock()
				if writeErr == nil && buf.Len() > 0 {
					if _, err := out.Write(buf.Bytes()); err != nil {
						writeErr = fmt.Errorf("write match records: %w", err)
					}
				}
				writeMu.Unlock()

				if progress != nil {
					progress(done.Load(), total, matches.Load())
				}
			}
		}()
	}

	var feedErr error
feed:
	for _, key := range keys {
		select {
		case tasks <- key:
		case <-ctx.Done():
			feedErr = ctx.Err()
			break feed
		}
	}
	close(tasks)
	wg.Wait()

	result := CompareResult{
		Comparisons:        done.Load(),
		SameArticleMatches: matches.Load(),
	}
	if feedErr != nil {
		return result, feedErr
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	return result, writeErr
}

func compareGroup(law string, citations []CitationInfo, enc *json.Encoder) (pairs, matches int64) {
	n := len(citations)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c1, c2 := &citations[i], &citations[j]
			if c1.ElementID == c2.ElementID {
				continue
			}
			pairs++

			overlap := c1.Articles.Intersect(c2.Articles)
			hasOverlap := len(overlap) > 0
			if hasOverlap {
				matches++
			}

			record := MatchRecord{
				Element1: c1.ElementID,
				Element2: c2.ElementID,
				Analysis: MatchAnalysis{
					Citation1:           c1.Citation,
					Citation2:           c2.Citation,
					SameLaw:             true,
					SameArticle:         hasOverlap,
					Law1:                law,
					Law2:                law,
					Articles1:           c1.Articles.Sorted(),
					Articles2:           c2.Articles.Sorted(),
					OverlappingArticles: overlap.Sorted(),
				},
			}
			// Encoding into the local buffer cannot fail for this shape.
			_ = enc.Encode(record)
		}
	}
	return pairs, matches
}
