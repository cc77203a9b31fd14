package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// planDTO mirrors api.PlanDTO (the fields this CLI prints).
type planDTO struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	Steps  []stepDTO `json:"steps"`
}

type stepDTO struct {
	ID      string         `json:"id"`
	AgentID string         `json:"agentId"`
	Status  string         `json:"status"`
	Result  *stepResultDTO `json:"result,omitempty"`
}

type stepResultDTO struct {
	Error string `json:"error,omitempty"`
}

// costSummaryDTO mirrors the fields of api.CostSummaryDTO this CLI prints.
type costSummaryDTO struct {
	TotalCost      float64 `json:"totalCost"`
	TotalTasks     int     `json:"totalTasks"`
	AvgCostPerTask float64 `json:"avgCostPerTask"`
}

// costBreakdownDTO mirrors api.CostBreakdownDTO.
type costBreakdownDTO struct {
	Cost  float64 `json:"cost"`
	Tasks int     `json:"tasks"`
}

type errorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type compileWorkflowRequest struct {
	Text           string `json:"text"`
	DefaultAgentID string `json:"defaultAgentId,omitempty"`
}

func postWorkflow(addr, path, text, agentID string) (*planDTO, error) {
	body, err := json.Marshal(compileWorkflowRequest{Text: text, DefaultAgentID: agentID})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := http.Post(addr+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", addr+path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, apiError(respBody, resp.StatusCode)
	}

	var plan planDTO
	if err := json.Unmarshal(respBody, &plan); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &plan, nil
}

func getPlan(addr, id string) (*planDTO, error) {
	respBody, status, err := get(addr + "/api/v1/plans/" + id)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, apiError(respBody, status)
	}
	var plan planDTO
	if err := json.Unmarshal(respBody, &plan); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &plan, nil
}

func getCostSummary(addr, agentID, guild string, limit int) (*costSummaryDTO, error) {
	url := fmt.Sprintf("%s/api/v1/costs/summary?agentId=%s&guild=%s&limit=%d", addr, agentID, guild, limit)
	respBody, status, err := get(url)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, apiError(respBody, status)
	}
	var summary costSummaryDTO
	if err := json.Unmarshal(respBody, &summary); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &summary, nil
}

func getCostBreakdown(addr, path string) (*costBreakdownDTO, error) {
	respBody, status, err := get(addr + path)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, apiError(respBody, status)
	}
	var bd costBreakdownDTO
	if err := json.Unmarshal(respBody, &bd); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &bd, nil
}

func getCostCSV(addr string) (string, error) {
	respBody, status, err := get(addr + "/api/v1/costs/export.csv")
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", apiError(respBody, status)
	}
	return string(respBody), nil
}

func get(url string) ([]byte, int, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, 0, fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode, nil
}

func apiError(body []byte, statusCode int) error {
	var errResp errorDTO
	if json.Unmarshal(body, &errResp) == nil && errResp.Code != "" {
		return fmt.Errorf("[%s] %s", errResp.Code, errResp.Message)
	}
	return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
}
