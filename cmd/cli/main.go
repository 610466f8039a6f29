package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Small client for a running API: trigger a report, poll until terminal,
// download the artifact next to the current directory.
func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	var (
		storeID = flag.String("store", "", "restrict the report to one store id")
		start   = flag.String("start", "", "ISO start time (default: end-24h)")
		end     = flag.String("end", "", "ISO end time (default: now)")
		key     = flag.String("key", os.Getenv("API_KEY"), "API key (admin needed to trigger)")
		every   = flag.Duration("every", 2*time.Second, "poll interval")
	)
	flag.Parse()

	client := &http.Client{Timeout: 30 * time.Second}

	body, _ := json.Marshal(map[string]string{
		"store_id":   *storeID,
		"start_time": *start,
		"end_time":   *end,
	})
	req, _ := http.NewRequest(http.MethodPost, api+"/api/reports", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if *key != "" {
		req.Header.Set("X-API-Key", *key)
	}
	resp, err := client.Do(req)
	if err != nil {
		die("trigger: %v", err)
	}
	var triggered struct {
		ReportID string `json:"report_id"`
		Error    string `json:"error"`
	}
	decodeBody(resp, &triggered)
	if resp.StatusCode != http.StatusOK {
		die("trigger: %d %s", resp.StatusCode, triggered.Error)
	}
	fmt.Println("report_id:", triggered.ReportID)

	for {
		time.Sleep(*every)
		view, code := poll(client, api, triggered.ReportID, *key)
		fmt.Println("state:", view.State)
		if code == http.StatusNotFound {
			die("report %s is gone (evicted?)", triggered.ReportID)
		}
		switch view.State {
		case "COMPLETED":
			out := triggered.ReportID + ".csv"
			if err := download(client, api, triggered.ReportID, *key, out); err != nil {
				die("download: %v", err)
			}
			fmt.Println("saved:", out)
			return
		case "FAILED":
			die("report failed: %s", view.Reason)
		}
	}
}

type jobView struct {
	State  string `json:"state"`
	Reason string `json:"reason"`
}

func poll(client *http.Client, api, id, key string) (jobView, int) {
	req, _ := http.NewRequest(http.MethodGet, api+"/api/reports/"+id, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := client.Do(req)
	if err != nil {
		die("poll: %v", err)
	}
	var v jobView
	decodeBody(resp, &v)
	return v, resp.StatusCode
}

func download(client *http.Client, api, id, key, out string) error {
	req, _ := http.NewRequest(http.MethodGet, api+"/api/reports/"+id+"/download", nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download status %d", resp.StatusCode)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func decodeBody(resp *http.Response, v any) {
	defer resp.Body.Close()
	_ = json.NewDecoder(resp.Body).Decode(v)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
