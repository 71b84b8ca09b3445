// Package pinecone stores note vectors in a Pinecone serverless index. The
// index itself is created out of band and must use the cosine metric.
package pinecone

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/w-h-a/brainvault/storer"
	getsafe "github.com/w-h-a/brainvault/util/get_safe"
	"google.golang.org/protobuf/types/known/structpb"
)

// indexConnection is the slice of *pinecone.IndexConnection the storer uses.
type indexConnection interface {
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	DescribeIndexStats(ctx context.Context) (*pinecone.DescribeIndexStatsResponse, error)
	Close() error
}

type pineconeStorer struct {
	options storer.Options
	conn    indexConnection
}

func (s *pineconeStorer) Upsert(ctx context.Context, id string, ownerId int64, content string, metadata map[string]any, vector []float32) error {
	payload := flatten(storer.Payload(ownerId, content, metadata))

	if _, ok := payload[storer.CreatedKey]; !ok {
		payload[storer.CreatedKey] = time.Now().UTC().Format(time.RFC3339Nano)
	}

	meta, err := structpb.NewStruct(payload)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	values := vector

	count, err := s.conn.UpsertVectors(ctx, []*pinecone.Vector{
		{
			Id:       id,
			Values:   &values,
			Metadata: meta,
		},
	})
	if err != nil {
		return err
	}

	if count != 1 {
		return fmt.Errorf("pinecone upserted %d vectors, want 1", count)
	}

	return nil
}

func (s *pineconeStorer) Search(ctx context.Context, ownerId int64, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	filter, err := structpb.NewStruct(map[string]any{
		storer.OwnerKey: map[string]any{"$eq": ownerId},
	})
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	rsp, err := s.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(limit),
		MetadataFilter:  filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}

	results := make([]storer.Record, 0, len(rsp.Matches))

	for _, match := range rsp.Matches {
		if match == nil || match.Vector == nil {
			continue
		}

		payload := match.Vector.Metadata.AsMap()

		owner, ok := storer.OwnerFrom(payload)
		if !ok {
			continue
		}

		createdAt, _ := time.Parse(time.RFC3339Nano, getsafe.String(payload, storer.CreatedKey))

		var embedding []float32
		if match.Vector.Values != nil {
			embedding = *match.Vector.Values
		}

		rec := storer.Record{
			Id:        match.Vector.Id,
			OwnerId:   owner,
			Content:   getsafe.String(payload, storer.TextKey),
			Metadata:  payload,
			Embedding: embedding,
			Score:     match.Score,
			CreatedAt: createdAt,
		}

		results = append(results, rec)
	}

	return results, nil
}

func (s *pineconeStorer) Close() error {
	return s.conn.Close()
}

func (s *pineconeStorer) configure(ctx context.Context) error {
	stats, err := s.conn.DescribeIndexStats(ctx)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "connected to pinecone index", "vectors", stats.TotalVectorCount, "namespace", s.options.Namespace)

	return nil
}

// checkIndex rejects an index whose metric or dimension disagrees with the
// storer options.
func checkIndex(idx *pinecone.Index, options storer.Options) error {
	if !strings.EqualFold(string(idx.Metric), options.Distance) {
		return fmt.Errorf("pinecone index metric %q does not match distance %q", idx.Metric, options.Distance)
	}

	if idx.Dimension != nil && options.VectorSize > 0 && int(*idx.Dimension) != options.VectorSize {
		return fmt.Errorf("pinecone index dimension %d does not match vector size %d", *idx.Dimension, options.VectorSize)
	}

	return nil
}

// flatten keeps the value types pinecone metadata accepts and encodes the
// rest as JSON strings.
func flatten(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))

	for k, v := range payload {
		switch val := v.(type) {
		case nil:
			continue
		case string, bool, int, int32, int64, float32, float64:
			out[k] = val
		case []string:
			list := make([]any, len(val))
			for i, item := range val {
				list[i] = item
			}
			out[k] = list
		default:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			out[k] = string(b)
		}
	}

	return out
}

func newStorer(options storer.Options, conn indexConnection) (*pineconeStorer, error) {
	s := &pineconeStorer{
		options: options,
		conn:    conn,
	}

	if err := s.configure(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// NewStorer connects to the index at the configured host. When an index name
// is given, its metric and dimension are checked through the control plane
// and its host is used if none was configured.
func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	if len(options.ApiKey) == 0 || (len(options.Location) == 0 && len(options.Collection) == 0) {
		panic("missing api key, or host and index name, for pinecone storer")
	}

	ctx, cancel := context.WithTimeout(context.Background(), options.Timeout)
	defer cancel()

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey:     options.ApiKey,
		RestClient: options.HTTPClient,
	})
	if err != nil {
		detail := "failed to create pinecone client"
		slog.ErrorContext(ctx, detail, "error", err)
		panic(detail)
	}

	host := options.Location

	if len(options.Collection) > 0 {
		idx, err := client.DescribeIndex(ctx, options.Collection)
		if err != nil {
			detail := "failed to describe pinecone index"
			slog.ErrorContext(ctx, detail, "error", err)
			panic(detail)
		}

		if err := checkIndex(idx, options); err != nil {
			detail := "pinecone index does not fit the storer"
			slog.ErrorContext(ctx, detail, "error", err)
			panic(detail)
		}

		if len(host) == 0 {
			host = idx.Host
		}
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{
		Host:      host,
		Namespace: options.Namespace,
	})
	if err != nil {
		detail := "failed to connect with pinecone index"
		slog.ErrorContext(ctx, detail, "error", err)
		panic(detail)
	}

	s, err := newStorer(options, conn)
	if err != nil {
		detail := "failed to configure pinecone storer"
		slog.ErrorContext(ctx, detail, "error", err)
		panic(detail)
	}

	return s
}
