package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Supabase talks to a Supabase Storage bucket over its REST API.
type Supabase struct {
	baseURL    *url.URL
	key        string
	bucket     string
	httpClient *http.Client
}

// NewSupabase creates a client for bucket on the project at rawURL, authenticated with
// a service role key.
func NewSupabase(rawURL, key, bucket string) (*Supabase, error) {
	if rawURL == "" || key == "" {
		return nil, errors.New("storage URL and key are required")
	}
	if bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	parsed, err := url.Parse(strings.TrimRight(rawURL, "/") + "/storage/v1")
	if err != nil {
		return nil, fmt.Errorf("invalid storage URL: %w", err)
	}
	return &Supabase{
		baseURL:    parsed,
		key:        key,
		bucket:     bucket,
		httpClient: http.DefaultClient,
	}, nil
}

// Bucket returns the bucket name
func (s *Supabase) Bucket() string {
	return s.bucket
}

// Upload stores data under key. Existing objects are not overwritten.
func (s *Supabase) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	req, err := s.newRequest(ctx, http.MethodPost, s.resolveURL("object", s.bucket, key), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	return s.do(req, http.StatusOK, http.StatusCreated)
}

// removeRequest is the body of a bulk delete.
type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

// Remove deletes the given keys
func (s *Supabase) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	body, err := json.Marshal(removeRequest{Prefixes: keys})
	if err != nil {
		return fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodDelete, s.resolveURL("object", s.bucket), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req, http.StatusOK)
}

func (s *Supabase) resolveURL(pathSegments ...string) string {
	return s.baseURL.JoinPath(pathSegments...).String()
}

func (s *Supabase) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
	return req, nil
}

func (s *Supabase) do(req *http.Request, expectedStatuses ...int) error {
	resp, err := s.httpClient.Do(req) //nolint:gosec // URL built from the configured project URL
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if !slices.Contains(expectedStatuses, resp.StatusCode) {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
