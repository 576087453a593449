package authors

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain/query"
)

// LoadAliases reads a JSON object mapping author name variants to their
// canonical form and builds an alias table for query expansion.
func LoadAliases(path string) (query.AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return query.AliasTable{}, fmt.Errorf("open author aliases: %w", err)
	}
	var variants map[string]string
	if err := json.Unmarshal(data, &variants); err != nil {
		return query.AliasTable{}, fmt.Errorf("parse author aliases: %w", err)
	}
	return query.NewAliasTable(variants), nil
}
