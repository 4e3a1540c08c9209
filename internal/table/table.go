// Package table loads the observation table from files, object storage or the message store.
package table

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/huangsam/leadtime/schema"
)

// FileSource loads observations from a local file or an s3:// object.
type FileSource struct {
	path   string
	format schema.InputFormat
	s3     contract.S3Config
	client ObjectGetter // Lazily created for s3:// paths when nil
}

// NewFileSource creates a source for a local path or s3://bucket/key URL.
func NewFileSource(path string, format schema.InputFormat, s3cfg contract.S3Config) *FileSource {
	return &FileSource{path: path, format: format, s3: s3cfg}
}

// Describe returns the path of the source.
func (s *FileSource) Describe() string {
	return s.path
}

// Load reads and decodes the whole file, then keeps the selected cycles.
func (s *FileSource) Load(ctx context.Context, cycles []time.Time) ([]schema.Observation, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	observations, err := Decode(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return FilterCycles(observations, cycles), nil
}

func (s *FileSource) read(ctx context.Context) ([]byte, error) {
	if bucket, key, ok := ParseS3URL(s.path); ok {
		if s.client == nil {
			client, err := NewS3Client(ctx, s.s3)
			if err != nil {
				return nil, err
			}
			s.client = client
		}
		return FetchObject(ctx, s.client, bucket, key)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// StoreSource loads observations of one product from the message store.
type StoreSource struct {
	store   contract.MessageStore
	product schema.ProductFilter
}

// NewStoreSource creates a source backed by the message store.
func NewStoreSource(store contract.MessageStore, product schema.ProductFilter) *StoreSource {
	return &StoreSource{store: store, product: product}
}

// Describe names the product being read.
func (s *StoreSource) Describe() string {
	return fmt.Sprintf("store:%s/%s/%s/%s", s.product.System, s.product.Stream, s.product.Type, s.product.Name)
}

// Load queries the store for the product, restricted to the selected cycles.
func (s *StoreSource) Load(ctx context.Context, cycles []time.Time) ([]schema.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	observations, err := s.store.Query(s.product, cycles)
	if err != nil {
		return nil, fmt.Errorf("failed to query message store: %w", err)
	}
	return observations, nil
}

// NewSource picks the observation source described by the configuration.
func NewSource(cfg *contract.Config, mgr contract.StoreManager) (contract.ObservationSource, error) {
	if cfg.InputFormat == schema.StoreInput {
		var store contract.MessageStore
		if mgr != nil {
			store = mgr.GetMessageStore()
		}
		if store == nil {
			return nil, errors.New("message store is disabled. set --message-backend")
		}
		return NewStoreSource(store, cfg.Product), nil
	}
	if strings.TrimSpace(cfg.Input) == "" {
		return nil, errors.New("an input file is required")
	}
	return NewFileSource(cfg.Input, cfg.InputFormat, cfg.S3), nil
}

// FilterCycles keeps observations whose start time is one of the cycles.
// No cycles means no filtering.
func FilterCycles(observations []schema.Observation, cycles []time.Time) []schema.Observation {
	set := contract.CycleSet(cycles)
	if set == nil {
		return observations
	}
	kept := make([]schema.Observation, 0, len(observations))
	for _, o := range observations {
		if _, ok := set[o.StartTime.UTC()]; ok {
			kept = append(kept, o)
		}
	}
	return kept
}
