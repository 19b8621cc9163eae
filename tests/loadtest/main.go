package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	flag "github.com/spf13/pflag"
)

const (
	numDrafts   = 200
	numVideos   = 500
	numChannels = 5
)

var activityTypes = []string{"video_processed", "category_created", "story_generated"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type loadTest struct {
	baseURL    string
	numWorkers int
}

func main() {
	lt := &loadTest{}
	var duration time.Duration
	flag.StringVar(&lt.baseURL, "url", "http://127.0.0.1:8090", "composer base URL")
	flag.IntVar(&lt.numWorkers, "workers", 50, "concurrent workers")
	flag.DurationVar(&duration, "duration", 10*time.Second, "duration of each phase")
	flag.Parse()

	fmt.Println("=== Composer Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Drafts: %d | Videos: %d\n\n", lt.numWorkers, duration, numDrafts, numVideos)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(lt.baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding drafts, channels and processing state ---")
	lt.runPhase(duration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.5 {
			return lt.putDraft(rng)
		}
		return lt.putProcessing(rng)
	})

	fmt.Println("\n--- Phase 2: Mixed load (activity appends and stats merges) ---")
	lt.runPhase(duration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return lt.postActivity(rng)
		case r < 0.50:
			return lt.patchStats(rng)
		case r < 0.70:
			return lt.putDraft(rng)
		case r < 0.85:
			return lt.getDraft(rng)
		default:
			return lt.get("/activity?limit=10", "GET /activity")
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load ---")
	lt.runPhase(duration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return lt.postActivity(rng)
		case r < 0.40:
			return lt.getDraft(rng)
		case r < 0.60:
			return lt.get(fmt.Sprintf("/processing/v%d", rng.Intn(numVideos)), "GET /processing/{videoID}")
		case r < 0.80:
			return lt.get("/stats", "GET /stats")
		default:
			return lt.get("/activity", "GET /activity")
		}
	})
}

func (lt *loadTest) runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < lt.numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	fmt.Println("  " + strings.Repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

// send issues one request; 404 counts as success for reads of keys that may not exist yet.
func (lt *loadTest) send(method, path, endpoint string, body any, want int) result {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, lt.baseURL+path, reader)
	if err != nil {
		return result{endpoint: endpoint, err: true}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	ok := resp.StatusCode == want || (method == http.MethodGet && resp.StatusCode == http.StatusNotFound)
	return result{endpoint, resp.StatusCode, lat, !ok}
}

func (lt *loadTest) get(path, endpoint string) result {
	return lt.send(http.MethodGet, path, endpoint, nil, http.StatusOK)
}

func (lt *loadTest) putDraft(rng *rand.Rand) result {
	body := map[string]any{
		"title": fmt.Sprintf("Draft %d", rng.Intn(1000)),
		"words": rng.Intn(2000),
	}
	path := fmt.Sprintf("/cache/draft_%d?ttl=1h", rng.Intn(numDrafts))
	return lt.send(http.MethodPut, path, "PUT /cache/{key}", body, http.StatusNoContent)
}

func (lt *loadTest) getDraft(rng *rand.Rand) result {
	return lt.get(fmt.Sprintf("/cache/draft_%d", rng.Intn(numDrafts)), "GET /cache/{key}")
}

func (lt *loadTest) putProcessing(rng *rand.Rand) result {
	states := []string{"pending", "processing", "completed", "failed"}
	body := map[string]any{
		"state":    states[rng.Intn(len(states))],
		"category": fmt.Sprintf("channel_%d", rng.Intn(numChannels)),
	}
	path := fmt.Sprintf("/processing/v%d", rng.Intn(numVideos))
	return lt.send(http.MethodPut, path, "PUT /processing/{videoID}", body, http.StatusNoContent)
}

func (lt *loadTest) postActivity(rng *rand.Rand) result {
	t := activityTypes[rng.Intn(len(activityTypes))]
	var detail map[string]any
	switch t {
	case "video_processed":
		detail = map[string]any{"videoId": fmt.Sprintf("v%d", rng.Intn(numVideos))}
	case "category_created":
		detail = map[string]any{"category": fmt.Sprintf("cat_%d", rng.Intn(20))}
	default:
		detail = map[string]any{"source": "synopsis", "variations": rng.Intn(5) + 1}
	}
	body := map[string]any{"type": t, "title": "load " + t, "detail": detail}
	return lt.send(http.MethodPost, "/activity", "POST /activity", body, http.StatusCreated)
}

func (lt *loadTest) patchStats(rng *rand.Rand) result {
	body := map[string]any{"processedVideos": rng.Intn(numVideos)}
	if rng.Float64() < 0.3 {
		body["totalVideos"] = numVideos
	}
	return lt.send(http.MethodPatch, "/stats", "PATCH /stats", body, http.StatusOK)
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
