package locale

// Store exposes language pack retrieval for HTTP handlers.
type Store interface {
	List() []Pack
	FindByLanguage(lang Language) (Pack, bool)
}

// MemoryStore implements Store with an in-memory slice, suitable for MVP.
type MemoryStore struct {
	items []Pack
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied packs.
func NewMemoryStore(items []Pack) *MemoryStore {
	return &MemoryStore{items: append([]Pack(nil), items...)}
}

// List returns the available language packs.
func (s *MemoryStore) List() []Pack {
	return append([]Pack(nil), s.items...)
}

// FindByLanguage looks up a pack by language code.
func (s *MemoryStore) FindByLanguage(lang Language) (Pack, bool) {
	for _, item := range s.items {
		if item.Language == lang {
			return item, true
		}
	}
	return Pack{}, false
}
