package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type service struct {
	client  *http.Client
	baseURL string
}

func newService(baseURL string, timeout time.Duration) service {
	return service{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends body as JSON and decodes a JSON response into out when out is not nil.
func (s *service) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(jsonData)
	}

	request, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/%s", s.baseURL, path), reader)
	if err != nil {
		return err
	}

	request.Header.Add("Accept", "application/json")
	if body != nil {
		request.Header.Add("Content-Type", "application/json; charset=utf-8")
	}

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Method: method, Path: path, StatusCode: response.StatusCode, Body: string(bytes.TrimSpace(responseBody))}
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(responseBody, out)
}

type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s /%s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}
