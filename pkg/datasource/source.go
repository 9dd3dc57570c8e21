package datasource

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nearbytask/admin-dashboard/components/listing"
)

// Source is a typed listing.DataSource over one backend collection. Each raw
// item is validated against its schema before it is decoded into R.
type Source[R any] struct {
	fetcher    Fetcher
	request    FetchRequest
	schemaName string
	schema     []byte
	validator  listing.RecordValidator
	onInvalid  func(index int, err error)
}

// SourceOption customizes a Source.
type SourceOption func(*sourceOptions)

type sourceOptions struct {
	schemaName string
	schema     []byte
	validator  listing.RecordValidator
	onInvalid  func(int, error)
	month      string
}

// WithSchema validates items against schema, compiled once under name.
func WithSchema(name string, schema []byte) SourceOption {
	return func(o *sourceOptions) {
		o.schemaName = name
		o.schema = schema
	}
}

// WithValidator overrides the schema validator.
func WithValidator(v listing.RecordValidator) SourceOption {
	return func(o *sourceOptions) { o.validator = v }
}

// SkipInvalid drops items that fail validation or decoding and reports them
// to fn instead of failing the whole fetch.
func SkipInvalid(fn func(index int, err error)) SourceOption {
	return func(o *sourceOptions) {
		if fn == nil {
			fn = func(int, error) {}
		}
		o.onInvalid = fn
	}
}

// WithMonth sets the month query parameter for report endpoints.
func WithMonth(month string) SourceOption {
	return func(o *sourceOptions) { o.month = month }
}

// NewSource binds a fetch request to the record type R.
func NewSource[R any](fetcher Fetcher, req FetchRequest, opts ...SourceOption) *Source[R] {
	options := sourceOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.month != "" {
		req.Month = options.month
	}
	validator := options.validator
	if validator == nil && len(options.schema) > 0 {
		validator = listing.NewJSONSchemaValidator()
	}
	return &Source[R]{
		fetcher:    fetcher,
		request:    req,
		schemaName: options.schemaName,
		schema:     options.schema,
		validator:  listing.NormalizeValidator(validator),
		onInvalid:  options.onInvalid,
	}
}

var _ listing.DataSource[struct{}] = (*Source[struct{}])(nil)

// Fetch retrieves and decodes the collection.
func (s *Source[R]) Fetch(ctx context.Context) ([]R, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("datasource: fetcher is required")
	}
	items, err := s.fetcher.Fetch(ctx, s.request)
	if err != nil {
		return nil, err
	}
	out := make([]R, 0, len(items))
	for i, raw := range items {
		record, err := s.decode(raw)
		if err != nil {
			if s.onInvalid != nil {
				s.onInvalid(i, err)
				continue
			}
			return nil, &listing.Error{Kind: listing.KindValidation, Op: "datasource." + s.request.Collection, Err: fmt.Errorf("item %d: %w", i, err)}
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *Source[R]) decode(raw json.RawMessage) (R, error) {
	var record R
	if len(s.schema) > 0 {
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return record, err
		}
		if err := s.validator.Validate(s.schemaName, s.schema, generic); err != nil {
			return record, err
		}
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, err
	}
	return record, nil
}
