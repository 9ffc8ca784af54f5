package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// HTTPEngine calls a remote answering service over HTTP. Every call runs under
// an explicit deadline so a hung engine cannot stall the pipeline.
type HTTPEngine struct {
	baseURL    string
	timeout    time.Duration
	sampleRows int
	client     *http.Client
}

// NewHTTPEngine creates a client for the answering service at baseURL.
// sampleRows bounds how many dataset rows are sent with each question.
func NewHTTPEngine(baseURL string, timeout time.Duration, sampleRows int) *HTTPEngine {
	return &HTTPEngine{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		sampleRows: sampleRows,
		client:     &http.Client{},
	}
}

type answerRequest struct {
	Question string       `json:"question"`
	Filename string       `json:"filename"`
	Columns  []string     `json:"columns"`
	Rows     [][]string   `json:"rows"`
	History  []answerTurn `json:"history"`
}

type answerTurn struct {
	Message  string `json:"message"`
	Response string `json:"response"`
}

type answerResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Answer posts the question, a bounded dataset sample, and the session history
// to the engine and returns its raw answer.
func (e *HTTPEngine) Answer(ctx context.Context, question string, table *models.Table, history []models.ChatEntry) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	payload := answerRequest{
		Question: question,
		Filename: table.Filename,
		Columns:  table.Columns,
		Rows:     table.Head(e.sampleRows),
		History:  make([]answerTurn, 0, len(history)),
	}
	for _, entry := range history {
		payload.History = append(payload.History, answerTurn{Message: entry.Message, Response: entry.Response})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal answer request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/answer", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("answering engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("answering engine returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out answerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode engine response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("answering engine error: %s", out.Error)
	}
	return out.Response, nil
}
