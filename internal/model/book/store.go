package book

// Store exposes book retrieval for HTTP handlers.
type Store interface {
	List() []Book
	FindByID(id string) (Book, bool)
}

// MemoryStore implements Store with an in-memory slice loaded once at startup.
type MemoryStore struct {
	items []Book
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied books.
func NewMemoryStore(items []Book) *MemoryStore {
	return &MemoryStore{items: append([]Book(nil), items...)}
}

// List returns the books in file order.
func (s *MemoryStore) List() []Book {
	return append([]Book(nil), s.items...)
}

// FindByID looks up a book by identifier.
func (s *MemoryStore) FindByID(id string) (Book, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Book{}, false
}
