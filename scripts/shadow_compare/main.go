// Command shadow_compare replays a set of read-only requests against the
// new schedule backend and the legacy deployment it replaces, and reports
// response differences. Run it against production traffic samples before
// switching the mobile clients over.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type target struct {
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

// defaultTargets covers every read endpoint with live groups and lecturers.
var defaultTargets = []target{
	{Path: "/v1/health", Critical: true},
	{Path: "/v1/group/%D0%90-01-22/id", Critical: true},
	{Path: "/v1/group/%D0%90-01-22/schedule/0", Critical: true},
	{Path: "/v1/group/%D0%A1-12-21/schedule/1", Critical: true},
	{Path: "/v1/search?q=%D0%90-01&type=group", Critical: false},
	{Path: "/v1/search?q=%D0%98%D0%B2%D0%B0%D0%BD%D0%BE%D0%B2", Critical: false},
}

type comparison struct {
	Target         target
	LegacyStatus   int
	NewStatus      int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationNew    time.Duration
	DurationLegacy time.Duration
}

func main() {
	var (
		newBase     string
		legacyBase  string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&newBase, "new-base", "http://localhost:8080", "new backend base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8081", "legacy backend base URL")
	flag.StringVar(&targetsPath, "targets", "", "optional JSON file with extra request targets")
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		extra, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		targets = append(targets, extra...)
	}

	client := &http.Client{Timeout: timeout}
	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)

	for _, t := range targets {
		comp := compareTarget(client, newBase, legacyBase, t)
		if comp.Error != nil || !comp.StatusMatch || !comp.BodyMatch {
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Breaking diffs: %d, optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var targets []target
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

func compareTarget(client *http.Client, newBase, legacyBase string, tgt target) comparison {
	comp := comparison{Target: tgt}

	newStatus, newBody, newDur, err := performRequest(client, newBase, tgt.Path)
	if err != nil {
		comp.Error = fmt.Errorf("new backend request failed: %w", err)
		return comp
	}
	legacyStatus, legacyBody, legacyDur, err := performRequest(client, legacyBase, tgt.Path)
	if err != nil {
		comp.Error = fmt.Errorf("legacy backend request failed: %w", err)
		return comp
	}

	comp.NewStatus = newStatus
	comp.LegacyStatus = legacyStatus
	comp.DurationNew = newDur
	comp.DurationLegacy = legacyDur
	comp.StatusMatch = newStatus == legacyStatus
	comp.BodyMatch = bodiesEqual(newBody, legacyBody)

	return comp
}

func performRequest(client *http.Client, base, path string) (int, []byte, time.Duration, error) {
	url := strings.TrimRight(base, "/") + path

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("X-App-Version", "2.0.0")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return deepEqual(aj, bj)
}

// normalize flattens the numeric representations the two generations
// disagree on. The new backend serialises schedule IDs as strings while
// the legacy one sends numbers, and both float and integer forms of the
// same value must compare equal.
func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case string:
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			*v = n
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func deepEqual(a, b interface{}) bool {
	aNorm, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bNorm, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aNorm, bNorm)
}

func printReport(results []comparison) {
	fmt.Println("Schedule backend shadow comparison")
	fmt.Println("==================================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] GET %s\n", status, res.Target.Path)
		if res.Error != nil {
			fmt.Printf("  error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  new: %d (%s) | legacy: %d (%s)\n", res.NewStatus, res.DurationNew, res.LegacyStatus, res.DurationLegacy)
		fmt.Printf("  status match: %t | body match: %t | critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
	}
}
