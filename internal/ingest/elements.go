// Package ingest parses the classified-element feed produced by the
// upstream IFC classifier. The classifier is an untrusted producer: its
// output is validated at the batch boundary before any calculation starts,
// and unknown fields are ignored.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/greenbim/carbonledger/internal/logging"
)

// MaterialRef identifies the primary material assigned to an element.
// Both fields are required to attempt a calculation.
type MaterialRef struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// ClassifiedElement is one building element as classified upstream.
// VolumeM3 is a pointer so an absent or null volume is distinguishable from
// an explicit zero; the two skip with different warnings.
type ClassifiedElement struct {
	GlobalID        string      `json:"global_id"`
	Name            string      `json:"name"`
	ElementType     string      `json:"element_type"`
	MaterialPrimary MaterialRef `json:"material_primary"`
	VolumeM3        *float64    `json:"volume_m3"`
	Confidence      float64     `json:"confidence"`
}

// batchEnvelope is the classifier's batch object form. A bare JSON array of
// elements is accepted as well.
type batchEnvelope struct {
	SourceFile string              `json:"source_file"`
	Elements   []ClassifiedElement `json:"elements"`
}

// Batch is a parsed element feed.
type Batch struct {
	// SourceFile is the upstream model identifier when the feed supplied
	// one; the CLI flag overrides it.
	SourceFile string

	Elements []ClassifiedElement
}

// ParseElements parses a classified-element feed from JSON bytes. The feed
// is either a bare array of elements or an object with an "elements" key.
// A malformed feed is a structural failure: no partial batch is returned.
func ParseElements(ctx context.Context, data []byte) (*Batch, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Ctx(ctx).
		Str("component", "ingest").
		Str("operation", "parse_elements").
		Int("data_size_bytes", len(data)).
		Msg("parsing classified elements")

	batch, err := parseFeed(data)
	if err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "ingest").
			Str("operation", "parse_elements").
			Err(err).
			Msg("failed to parse element feed")
		return nil, err
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "ingest").
		Int("element_count", len(batch.Elements)).
		Msg("element feed parsed")

	return batch, nil
}

func parseFeed(data []byte) (*Batch, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elements []ClassifiedElement
		if err := json.Unmarshal(data, &elements); err != nil {
			return nil, fmt.Errorf("parsing element feed JSON: %w", err)
		}
		return &Batch{Elements: elements}, nil
	}

	var envelope batchEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing element feed JSON: %w", err)
	}
	return &Batch{
		SourceFile: envelope.SourceFile,
		Elements:   envelope.Elements,
	}, nil
}

// LoadElements reads and parses a classified-element feed file.
func LoadElements(ctx context.Context, path string) (*Batch, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Ctx(ctx).
		Str("component", "ingest").
		Str("operation", "load_elements").
		Str("feed_path", path).
		Msg("loading classified elements")

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "ingest").
			Err(err).
			Str("feed_path", path).
			Msg("failed to read element feed")
		return nil, fmt.Errorf("reading element feed: %w", err)
	}

	return ParseElements(ctx, data)
}
