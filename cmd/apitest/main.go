package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status string `json:"status"`
}

// MessageResponse is the response for /get-message
type MessageResponse struct {
	Message string `json:"message"`
}

// GreetingResponse is the response for /greeting
type GreetingResponse struct {
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url"`
}

// StatusResponse is the subset of /admin/status the runner checks
type StatusResponse struct {
	Date          string `json:"date"`
	JalaliMonth   int    `json:"jalali_month"`
	CurrentSeason string `json:"current_season"`
	Seasons       map[string]struct {
		Images    int     `json:"images"`
		Used      int     `json:"used"`
		LastReset *string `json:"last_reset"`
		Problem   string  `json:"problem"`
	} `json:"seasons"`
	MessageIndex int `json:"message_index"`
	MessageCount int `json:"message_count"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Seasonal Greetings API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	// Run test groups
	tr.testHealth()
	tr.testMessages()
	tr.testImage()
	tr.testGreeting()
	tr.testAdminStatus()
	tr.testEdgeCases()

	// Print summary
	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.getJSON("/health", http.StatusOK, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess("Health check passed")
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testMessages() {
	tr.printSection("Message Rotation")

	var first, second MessageResponse
	if err := tr.getJSON("/get-message", http.StatusOK, &first); err != nil {
		tr.recordError("Message", err.Error())
		return
	}
	if first.Message == "" {
		tr.recordError("Message", "empty message")
		return
	}
	tr.recordSuccess(fmt.Sprintf("Message: %q", first.Message))

	if err := tr.getJSON("/get-message", http.StatusOK, &second); err != nil {
		tr.recordError("Message (second)", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("Next message: %q", second.Message))
}

func (tr *TestRunner) testImage() {
	tr.printSection("Seasonal Image")

	resp, err := tr.do(http.MethodGet, "/get-image", false)
	if err != nil {
		tr.recordError("Image", err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tr.recordError("Image", err.Error())
		return
	}

	if resp.StatusCode != http.StatusOK {
		tr.recordError("Image", fmt.Sprintf("status %d: %s", resp.StatusCode, describeError(body)))
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		tr.recordError("Image", fmt.Sprintf("Content-Type = %q, want image/jpeg", ct))
	} else {
		tr.recordSuccess("Content-Type is image/jpeg")
	}

	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename="output.jpg"`) {
		tr.recordError("Image", fmt.Sprintf("Content-Disposition = %q", cd))
	} else {
		tr.recordSuccess("Served as attachment output.jpg")
	}

	if sniffed := http.DetectContentType(body); sniffed != "image/jpeg" {
		tr.recordError("Image", fmt.Sprintf("body sniffs as %s", sniffed))
	} else {
		tr.recordSuccess(fmt.Sprintf("Body is JPEG (%d bytes)", len(body)))
	}
}

func (tr *TestRunner) testGreeting() {
	tr.printSection("Greeting")

	var g GreetingResponse
	if err := tr.getJSON("/greeting", http.StatusOK, &g); err != nil {
		tr.recordError("Greeting", err.Error())
		return
	}

	if g.Caption == "" {
		tr.recordError("Greeting", "empty caption")
	} else {
		tr.recordSuccess(fmt.Sprintf("Caption: %q", g.Caption))
	}

	if g.ImageURL != "/get-image" {
		tr.recordError("Greeting", fmt.Sprintf("image_url = %q, want /get-image", g.ImageURL))
	} else {
		tr.recordSuccess("image_url points at /get-image")
	}
}

func (tr *TestRunner) testAdminStatus() {
	tr.printSection("Admin Status")

	var st StatusResponse
	if err := tr.getJSON("/admin/status", http.StatusOK, &st); err != nil {
		tr.recordError("Status", err.Error())
		return
	}

	tr.recordSuccess(fmt.Sprintf("%s: season %s (jalali month %d), message %d/%d",
		st.Date, st.CurrentSeason, st.JalaliMonth, st.MessageIndex, st.MessageCount))

	if tr.verbose {
		for name, ss := range st.Seasons {
			last := "never"
			if ss.LastReset != nil {
				last = *ss.LastReset
			}
			fmt.Printf("    %-8s %d/%d used, last reset %s %s\n", name, ss.Used, ss.Images, last, ss.Problem)
		}
		fmt.Println()
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"Unknown route", http.MethodGet, "/nope", http.StatusNotFound},
		{"Wrong method on image", http.MethodPost, "/get-image", http.StatusMethodNotAllowed},
		{"Unknown season reset", http.MethodPost, "/admin/tracker/monsoon/reset", http.StatusBadRequest},
	}

	for _, tt := range tests {
		resp, err := tr.do(tt.method, tt.path, true)
		if err != nil {
			tr.recordError(tt.name, err.Error())
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == tt.status {
			tr.recordSuccess(fmt.Sprintf("%s: %d %s", tt.name, resp.StatusCode, describeError(body)))
		} else {
			tr.recordError(tt.name, fmt.Sprintf("status %d, want %d", resp.StatusCode, tt.status))
		}
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (tr *TestRunner) do(method, path string, withKey bool) (*http.Response, error) {
	req, err := http.NewRequest(method, tr.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if withKey && tr.apiKey != "" {
		req.Header.Set("X-API-Key", tr.apiKey)
	}
	return tr.client.Do(req)
}

func (tr *TestRunner) getJSON(path string, wantStatus int, target any) error {
	resp, err := tr.do(http.MethodGet, path, strings.HasPrefix(path, "/admin/"))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("status %d: %s", resp.StatusCode, describeError(body))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("parse error: %w (body: %s)", err, string(body))
	}
	return nil
}

// describeError renders an error body for output, falling back to raw text.
func describeError(body []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return strings.TrimSpace(string(body))
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Error, e.Code)
	}
	return e.Error
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key for the admin endpoints")
	verbose := flag.Bool("v", false, "Verbose output (show per-season detail)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, *verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
