package materials

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/greenbim/carbonledger/internal/logging"
)

// Format selects the database document encoding.
type Format int

const (
	// FormatJSON decodes the database from JSON.
	FormatJSON Format = iota

	// FormatYAML decodes the database from YAML.
	FormatYAML
)

// FormatForPath picks the decode format from a file extension.
// ".yaml" and ".yml" select YAML; everything else is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// entryDoc is the wire form of a material entry. Factor and density are
// pointers so that a missing field is distinguishable from zero.
type entryDoc struct {
	EmbodiedCO2PerKg *float64 `json:"embodied_co2_per_kg" yaml:"embodied_co2_per_kg"`
	DensityKgM3      *float64 `json:"density_kg_m3" yaml:"density_kg_m3"`
	Source           string   `json:"source" yaml:"source"`
}

// toEntry validates required fields. The CO2 factor may be negative (carbon
// sink); density must be strictly positive to keep mass arithmetic sound.
func (d entryDoc) toEntry(categoryName, subcategory string) (Entry, error) {
	if d.EmbodiedCO2PerKg == nil {
		return Entry{}, fmt.Errorf("%w: %s/%s missing embodied_co2_per_kg",
			ErrInvalidDatabase, categoryName, subcategory)
	}
	if d.DensityKgM3 == nil {
		return Entry{}, fmt.Errorf("%w: %s/%s missing density_kg_m3",
			ErrInvalidDatabase, categoryName, subcategory)
	}
	if *d.DensityKgM3 <= 0 {
		return Entry{}, fmt.Errorf("%w: %s/%s has non-positive density %g",
			ErrInvalidDatabase, categoryName, subcategory, *d.DensityKgM3)
	}
	return Entry{
		EmbodiedCO2PerKg: *d.EmbodiedCO2PerKg,
		DensityKgM3:      *d.DensityKgM3,
		Source:           d.Source,
	}, nil
}

// metadataDoc is the wire form of database metadata.
type metadataDoc struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Source  string `json:"source" yaml:"source"`
}

// LoadDatabase reads and parses a material database file. The format is
// chosen from the file extension.
func LoadDatabase(ctx context.Context, path string) (*Database, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Ctx(ctx).
		Str("component", "materials").
		Str("operation", "load_database").
		Str("database_path", path).
		Msg("loading material database")

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "materials").
			Err(err).
			Str("database_path", path).
			Msg("failed to read material database")
		return nil, fmt.Errorf("reading material database: %w", err)
	}

	return ParseDatabase(ctx, data, FormatForPath(path))
}

// ParseDatabase parses database content in the given format, preserving the
// document order of subcategories within each category. Document order feeds
// the first-in-category fallback, so both decoders walk the raw document
// instead of unmarshaling into Go maps (which would lose it). An optional
// subcategory_order section declares the order explicitly and wins over
// document order.
func ParseDatabase(ctx context.Context, data []byte, format Format) (*Database, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Ctx(ctx).
		Str("component", "materials").
		Str("operation", "parse_database").
		Int("data_size_bytes", len(data)).
		Msg("parsing material database")

	var (
		db  *Database
		err error
	)
	switch format {
	case FormatYAML:
		db, err = parseYAML(data)
	default:
		db, err = parseJSON(data)
	}
	if err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "materials").
			Str("operation", "parse_database").
			Err(err).
			Msg("failed to parse material database")
		return nil, err
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "materials").
		Str("database_version", db.meta.Version).
		Int("category_count", len(db.materials)).
		Int("ratio_count", len(db.ratios)).
		Msg("material database parsed")

	return db, nil
}

// documentJSON is the top-level JSON database schema. Materials is kept raw
// so the ordered token walk can see subcategories in document order.
type documentJSON struct {
	Metadata                    metadataDoc         `json:"metadata"`
	Materials                   json.RawMessage     `json:"materials"`
	SubcategoryOrder            map[string][]string `json:"subcategory_order"`
	ReinforcementRatios         map[string]float64  `json:"reinforcement_ratios"`
	SteelReinforcementCO2Factor *float64            `json:"steel_reinforcement_co2_factor"`
}

func parseJSON(data []byte) (*Database, error) {
	var doc documentJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing database JSON: %w", err)
	}

	cats, err := decodeMaterialsJSON(doc.Materials)
	if err != nil {
		return nil, err
	}

	return build(doc.Metadata, cats, doc.SubcategoryOrder, doc.ReinforcementRatios, doc.SteelReinforcementCO2Factor)
}

// decodeMaterialsJSON walks the materials object with a token decoder so
// that subcategory order matches the document.
func decodeMaterialsJSON(raw json.RawMessage) (map[string]category, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing materials section", ErrInvalidDatabase)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%w: materials must be an object", ErrInvalidDatabase)
	}

	cats := make(map[string]category)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing materials: %w", err)
		}
		categoryName, _ := tok.(string)

		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("%w: category %s must be an object", ErrInvalidDatabase, categoryName)
		}

		cat := category{entries: make(map[string]Entry)}
		for dec.More() {
			subTok, subErr := dec.Token()
			if subErr != nil {
				return nil, fmt.Errorf("parsing category %s: %w", categoryName, subErr)
			}
			subcategory, _ := subTok.(string)

			var doc entryDoc
			if decodeErr := dec.Decode(&doc); decodeErr != nil {
				return nil, fmt.Errorf("parsing entry %s/%s: %w", categoryName, subcategory, decodeErr)
			}

			entry, entryErr := doc.toEntry(categoryName, subcategory)
			if entryErr != nil {
				return nil, entryErr
			}
			cat.order = append(cat.order, subcategory)
			cat.entries[subcategory] = entry
		}
		if _, err := dec.Token(); err != nil { // consume closing brace
			return nil, fmt.Errorf("parsing category %s: %w", categoryName, err)
		}

		cats[categoryName] = cat
	}

	return cats, nil
}

func expectDelim(dec *json.Decoder, want rune) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || rune(delim) != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// documentYAML is the top-level YAML database schema. Materials is a
// yaml.Node because node content preserves mapping order.
type documentYAML struct {
	Metadata                    metadataDoc         `yaml:"metadata"`
	Materials                   yaml.Node           `yaml:"materials"`
	SubcategoryOrder            map[string][]string `yaml:"subcategory_order"`
	ReinforcementRatios         map[string]float64  `yaml:"reinforcement_ratios"`
	SteelReinforcementCO2Factor *float64            `yaml:"steel_reinforcement_co2_factor"`
}

func parseYAML(data []byte) (*Database, error) {
	var doc documentYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing database YAML: %w", err)
	}

	cats, err := decodeMaterialsYAML(&doc.Materials)
	if err != nil {
		return nil, err
	}

	return build(doc.Metadata, cats, doc.SubcategoryOrder, doc.ReinforcementRatios, doc.SteelReinforcementCO2Factor)
}

func decodeMaterialsYAML(node *yaml.Node) (map[string]category, error) {
	if node.Kind == 0 {
		return nil, fmt.Errorf("%w: missing materials section", ErrInvalidDatabase)
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: materials must be a mapping", ErrInvalidDatabase)
	}

	cats := make(map[string]category)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]
		categoryName := keyNode.Value

		if valNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: category %s must be a mapping", ErrInvalidDatabase, categoryName)
		}

		cat := category{entries: make(map[string]Entry)}
		for j := 0; j+1 < len(valNode.Content); j += 2 {
			subcategory := valNode.Content[j].Value

			var doc entryDoc
			if err := valNode.Content[j+1].Decode(&doc); err != nil {
				return nil, fmt.Errorf("parsing entry %s/%s: %w", categoryName, subcategory, err)
			}

			entry, err := doc.toEntry(categoryName, subcategory)
			if err != nil {
				return nil, err
			}
			cat.order = append(cat.order, subcategory)
			cat.entries[subcategory] = entry
		}

		cats[categoryName] = cat
	}

	return cats, nil
}

// build assembles and validates a Database from decoded sections.
func build(
	meta metadataDoc,
	cats map[string]category,
	declaredOrder map[string][]string,
	ratios map[string]float64,
	steelFactor *float64,
) (*Database, error) {
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: no material categories", ErrInvalidDatabase)
	}

	if err := applyDeclaredOrder(cats, declaredOrder); err != nil {
		return nil, err
	}

	for elementType, ratio := range ratios {
		if ratio < 0 {
			return nil, fmt.Errorf("%w: negative reinforcement ratio %g for %s",
				ErrInvalidDatabase, ratio, elementType)
		}
	}

	db := &Database{
		meta: Metadata{
			Name:    meta.Name,
			Version: meta.Version,
			Source:  meta.Source,
		},
		materials: cats,
		ratios:    ratios,
	}

	if steelFactor != nil {
		if *steelFactor < 0 {
			return nil, fmt.Errorf("%w: negative steel_reinforcement_co2_factor %g",
				ErrInvalidDatabase, *steelFactor)
		}
		db.steelFactor = *steelFactor
	} else if len(ratios) > 0 {
		return nil, fmt.Errorf("%w: reinforcement_ratios present but steel_reinforcement_co2_factor missing",
			ErrInvalidDatabase)
	}

	return db, nil
}

// applyDeclaredOrder replaces document order with an explicitly declared
// subcategory order where one is given. Declared names must exist;
// subcategories the declaration omits keep their document order after the
// declared ones.
func applyDeclaredOrder(cats map[string]category, declared map[string][]string) error {
	for categoryName, names := range declared {
		cat, ok := cats[categoryName]
		if !ok {
			return fmt.Errorf("%w: subcategory_order names unknown category %s",
				ErrInvalidDatabase, categoryName)
		}

		seen := make(map[string]bool, len(names))
		order := make([]string, 0, len(cat.order))
		for _, name := range names {
			if _, exists := cat.entries[name]; !exists {
				return fmt.Errorf("%w: subcategory_order for %s names unknown subcategory %s",
					ErrInvalidDatabase, categoryName, name)
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			order = append(order, name)
		}
		for _, name := range cat.order {
			if !seen[name] {
				order = append(order, name)
			}
		}

		cat.order = order
		cats[categoryName] = cat
	}
	return nil
}
