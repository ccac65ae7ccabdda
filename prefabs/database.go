package prefabs

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// ItemType describes something the player can carry. Level items refer to
// it through their db_id.
type ItemType struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type NPCType struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	MaxHealth int    `yaml:"max_health"`
	MaxEnergy int    `yaml:"max_energy"`
}

func NewNPCType() NPCType {
	return NPCType{MaxHealth: 100, MaxEnergy: 100}
}

type DatabaseSpec struct {
	Items []ItemType `yaml:"items"`
	NPCs  []any      `yaml:"npcs"`
}

// Database is the item and NPC type catalogue.
type Database struct {
	items map[string]ItemType
	npcs  map[string]NPCType
}

// DecodeSpec re-encodes a loosely typed yaml value into T, starting from
// the value already in out.
func DecodeSpec[T any](raw any, out *T) error {
	if raw == nil {
		return nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

func LoadDatabase() (*Database, error) {
	spec, err := LoadSpec[DatabaseSpec]("database.yaml")
	if err != nil {
		return nil, err
	}
	return NewDatabase(spec)
}

func NewDatabase(spec DatabaseSpec) (*Database, error) {
	db := &Database{items: map[string]ItemType{}, npcs: map[string]NPCType{}}
	for _, it := range spec.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("prefabs: database: item without id")
		}
		if _, dup := db.items[it.ID]; dup {
			return nil, fmt.Errorf("prefabs: database: duplicate item %q", it.ID)
		}
		if it.Name == "" {
			it.Name = it.ID
		}
		db.items[it.ID] = it
	}
	for i, raw := range spec.NPCs {
		npc := NewNPCType()
		if err := DecodeSpec(raw, &npc); err != nil {
			return nil, fmt.Errorf("prefabs: database: npc %d: %w", i, err)
		}
		if npc.ID == "" {
			return nil, fmt.Errorf("prefabs: database: npc %d without id", i)
		}
		if _, dup := db.npcs[npc.ID]; dup {
			return nil, fmt.Errorf("prefabs: database: duplicate npc %q", npc.ID)
		}
		if npc.Name == "" {
			npc.Name = npc.ID
		}
		db.npcs[npc.ID] = npc
	}
	return db, nil
}

func (db *Database) Item(id string) (ItemType, bool) {
	if db == nil {
		return ItemType{}, false
	}
	it, ok := db.items[id]
	return it, ok
}

func (db *Database) NPC(id string) (NPCType, bool) {
	if db == nil {
		return NPCType{}, false
	}
	npc, ok := db.npcs[id]
	return npc, ok
}

func (db *Database) ItemIDs() []string {
	ids := make([]string, 0, len(db.items))
	for id := range db.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (db *Database) NPCIDs() []string {
	ids := make([]string, 0, len(db.npcs))
	for id := range db.npcs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
