package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/w-h-a/brainvault/storer"
	getsafe "github.com/w-h-a/brainvault/util/get_safe"
	httpclient "github.com/w-h-a/brainvault/util/http_client"
)

const defaultCollection = "notes"

var errNotFound = errors.New("qdrant: not found")

type qdrantStorer struct {
	options storer.Options
	client  *http.Client
}

func (s *qdrantStorer) Upsert(ctx context.Context, id string, ownerId int64, content string, metadata map[string]any, vector []float32) error {
	payload := storer.Payload(ownerId, content, metadata)

	if _, ok := payload[storer.CreatedKey]; !ok {
		payload[storer.CreatedKey] = time.Now().UTC().Format(time.RFC3339Nano)
	}

	req := qdrantUpsertRequest{
		Points: []qdrantPoint{
			{
				Id:      id,
				Vector:  vector,
				Payload: payload,
			},
		},
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(s.options.Collection))

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStorer) Search(ctx context.Context, ownerId int64, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	req := qdrantSearchRequest{
		Vector:      vector,
		Limit:       limit,
		WithVector:  true,
		WithPayload: true,
		Filter: qdrantFilter{
			Must: []qdrantCondition{
				{
					Key:   storer.OwnerKey,
					Match: qdrantMatch{Value: ownerId},
				},
			},
		},
	}

	var rsp qdrantEnvelope[[]qdrantPointResult]

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(s.options.Collection))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	results := make([]storer.Record, 0, len(rsp.Result))

	for _, point := range rsp.Result {
		payload := point.Payload

		owner, ok := storer.OwnerFrom(payload)
		if !ok {
			continue
		}

		createdAt, _ := time.Parse(time.RFC3339Nano, getsafe.String(payload, storer.CreatedKey))

		rec := storer.Record{
			Id:        point.Id,
			OwnerId:   owner,
			Content:   getsafe.String(payload, storer.TextKey),
			Metadata:  payload,
			Embedding: point.Vector,
			Score:     float32(point.Score),
			CreatedAt: createdAt,
		}

		results = append(results, rec)
	}

	return results, nil
}

func (s *qdrantStorer) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *qdrantStorer) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := strings.TrimRight(s.options.Location, "/") + path
	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("api-key", s.options.ApiKey)
		request.Header.Set("Authorization", "Bearer "+s.options.ApiKey)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode == http.StatusNotFound {
		return errNotFound
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("qdrant http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func (s *qdrantStorer) configure(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return s.createCollection(ctx)
}

func (s *qdrantStorer) collectionExists(ctx context.Context) (bool, error) {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(s.options.Collection))

	var rsp qdrantEnvelope[json.RawMessage]

	err := s.do(ctx, http.MethodGet, path, nil, &rsp)
	if errors.Is(err, errNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return strings.EqualFold(rsp.Status.State, "ok"), nil
}

func (s *qdrantStorer) createCollection(ctx context.Context) error {
	req := map[string]any{
		"vectors": map[string]any{
			"size":     s.options.VectorSize,
			"distance": "Cosine",
		},
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(s.options.Collection))

	var rsp qdrantEnvelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") {
		return errors.New(rsp.Status.Error)
	}

	// owner filtering runs on every search
	index := map[string]any{
		"field_name":   storer.OwnerKey,
		"field_schema": "integer",
	}

	indexPath := fmt.Sprintf("/collections/%s/index?wait=true", url.PathEscape(s.options.Collection))

	return s.do(ctx, http.MethodPut, indexPath, index, nil)
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	if len(options.Location) == 0 || options.VectorSize == 0 {
		panic("missing location or vector size for qdrant storer")
	}

	if len(options.Collection) == 0 {
		options.Collection = defaultCollection
	}

	if options.Distance != storer.DistanceCosine {
		panic(fmt.Sprintf("unsupported distance %q for qdrant storer", options.Distance))
	}

	client := options.HTTPClient
	if client == nil {
		client = httpclient.New(options.Timeout)
	}

	s := &qdrantStorer{
		options: options,
		client:  client,
	}

	if err := s.configure(context.Background()); err != nil {
		detail := "failed to configure qdrant storer"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	return s
}
