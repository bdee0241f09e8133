// Command allocation_diff runs day allocation against two deployments and
// reports slots whose assistant assignments differ. Point it at a baseline
// environment and a candidate one carrying an edited rules file before
// promoting the change.
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
	"strings"
	"time"
)

type allocateDayRequest struct {
	Date          string `json:"date"`
	OnlyFillEmpty bool   `json:"onlyFillEmpty"`
}

type slotAssignment struct {
	ID              string `json:"id"`
	PatientName     string `json:"patient_name"`
	DoctorName      string `json:"doctor_name"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	FirstAssistant  string `json:"first_assistant"`
	SecondAssistant string `json:"second_assistant"`
	ThirdAssistant  string `json:"third_assistant"`
}

type allocateDayResponse struct {
	Data struct {
		Date         string           `json:"date"`
		Changed      int              `json:"changed"`
		Appointments []slotAssignment `json:"appointments"`
	} `json:"data"`
}

type slotDiff struct {
	Slot      slotAssignment
	Candidate slotAssignment
	Roles     []string
}

func main() {
	var (
		baselineBase  string
		candidateBase string
		date          string
		token         string
		onlyFillEmpty bool
		timeout       time.Duration
	)

	flag.StringVar(&baselineBase, "baseline", "http://localhost:8080", "baseline API base URL")
	flag.StringVar(&candidateBase, "candidate", "http://localhost:8081", "candidate API base URL")
	flag.StringVar(&date, "date", time.Now().UTC().Format("2006-01-02"), "schedule date (YYYY-MM-DD)")
	flag.StringVar(&token, "token", os.Getenv("CLINIC_OPS_TOKEN"), "bearer token for both deployments")
	flag.BoolVar(&onlyFillEmpty, "only-fill-empty", true, "keep manual assignments, only fill blank roles")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if token == "" {
		log.Fatal("token required (flag -token or CLINIC_OPS_TOKEN)")
	}

	client := &http.Client{Timeout: timeout}
	req := allocateDayRequest{Date: date, OnlyFillEmpty: onlyFillEmpty}

	baseline, err := allocateDay(client, baselineBase, token, req)
	if err != nil {
		log.Fatalf("baseline allocation failed: %v", err)
	}
	candidate, err := allocateDay(client, candidateBase, token, req)
	if err != nil {
		log.Fatalf("candidate allocation failed: %v", err)
	}

	diffs := diffAssignments(baseline, candidate)
	printReport(date, baseline, candidate, diffs)
	if len(diffs) > 0 {
		os.Exit(1)
	}
}

func allocateDay(client *http.Client, base, token string, payload allocateDayRequest) (allocateDayResponse, error) {
	var out allocateDayResponse
	body, err := json.Marshal(payload)
	if err != nil {
		return out, err
	}
	url := strings.TrimRight(base, "/") + "/api/v1/allocation/day"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, err
	}
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func diffAssignments(baseline, candidate allocateDayResponse) []slotDiff {
	byID := make(map[string]slotAssignment, len(candidate.Data.Appointments))
	for _, slot := range candidate.Data.Appointments {
		byID[slot.ID] = slot
	}

	var diffs []slotDiff
	for _, slot := range baseline.Data.Appointments {
		other, ok := byID[slot.ID]
		if !ok {
			diffs = append(diffs, slotDiff{Slot: slot, Roles: []string{"missing in candidate"}})
			continue
		}
		var roles []string
		if slot.FirstAssistant != other.FirstAssistant {
			roles = append(roles, fmt.Sprintf("FIRST %q -> %q", slot.FirstAssistant, other.FirstAssistant))
		}
		if slot.SecondAssistant != other.SecondAssistant {
			roles = append(roles, fmt.Sprintf("SECOND %q -> %q", slot.SecondAssistant, other.SecondAssistant))
		}
		if slot.ThirdAssistant != other.ThirdAssistant {
			roles = append(roles, fmt.Sprintf("THIRD %q -> %q", slot.ThirdAssistant, other.ThirdAssistant))
		}
		if len(roles) > 0 {
			diffs = append(diffs, slotDiff{Slot: slot, Candidate: other, Roles: roles})
		}
	}
	return diffs
}

func printReport(date string, baseline, candidate allocateDayResponse, diffs []slotDiff) {
	fmt.Printf("Allocation diff for %s\n", date)
	fmt.Println("======================")
	fmt.Printf("Baseline changed %d assignments, candidate changed %d\n", baseline.Data.Changed, candidate.Data.Changed)
	if len(diffs) == 0 {
		fmt.Println("No assignment differences.")
		return
	}
	for _, d := range diffs {
		fmt.Printf("[DIFF] %s %s (%s - %s, %s)\n", d.Slot.ID, d.Slot.PatientName, d.Slot.StartTime, d.Slot.EndTime, d.Slot.DoctorName)
		for _, role := range d.Roles {
			fmt.Printf("  %s\n", role)
		}
	}
	fmt.Printf("%d slot(s) differ\n", len(diffs))
}
