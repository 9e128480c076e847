package rewards

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed table.schema.json
var tableSchemaJSON []byte

const tableSchemaURL = "schema://reward-table.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// tableFile is the on-disk reward table layout.
type tableFile struct {
	Activities map[ActivityType]ruleFile `json:"activities"`
	Seasons    map[Season]float64        `json:"seasons"`
	Ranks      []int64                   `json:"ranks"`
}

type ruleFile struct {
	Kind       Kind        `json:"kind"`
	EnergyCost int         `json:"energyCost"`
	Overall    int64       `json:"overall"`
	Split      *CategoryXP `json:"split,omitempty"`
}

// LoadTable reads a JSON reward table from path. Activity types missing
// from the file keep their default entries.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reward table: %w", err)
	}
	return ParseTable(raw)
}

// ParseTable validates raw against the reward table schema and builds
// a Table from it.
func ParseTable(raw []byte) (*Table, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := tableSchema()
	if err != nil {
		return nil, fmt.Errorf("compile reward table schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("reward table schema validation failed: %w", err)
	}

	var f tableFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode reward table: %w", err)
	}

	t := DefaultTable()
	for at, rf := range f.Activities {
		r := Rule{Kind: rf.Kind, EnergyCost: rf.EnergyCost, Award: Award{Overall: rf.Overall}}
		if rf.Split != nil {
			r.Award.Split = *rf.Split
		}
		t.Activities[at] = r
	}
	for s, m := range f.Seasons {
		t.Seasons[s] = MultiplierFromFloat(m)
	}
	for i, minXP := range f.Ranks {
		t.Ranks[i] = RankTier{Rank: Rank(i), MinXP: minXP}
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reward table: %w", err)
	}
	return t, nil
}

// Encode writes t in the layout accepted by LoadTable.
func (t *Table) Encode(w io.Writer) error {
	f := tableFile{
		Activities: make(map[ActivityType]ruleFile, len(t.Activities)),
		Seasons:    make(map[Season]float64, len(t.Seasons)),
	}
	for at, r := range t.Activities {
		split := r.Award.Split
		f.Activities[at] = ruleFile{
			Kind:       r.Kind,
			EnergyCost: r.EnergyCost,
			Overall:    r.Award.Overall,
			Split:      &split,
		}
	}
	for s, m := range t.Seasons {
		f.Seasons[s] = m.Float()
	}
	for _, tier := range t.Ranks {
		f.Ranks = append(f.Ranks, tier.MinXP)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

func tableSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(tableSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(tableSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(tableSchemaURL)
	})
	return compiledSchema, compileErr
}
