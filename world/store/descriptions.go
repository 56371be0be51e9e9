package store

// DescriptionTable maps a subject to its display text
type DescriptionTable interface {
	Put(subject, text string) error
	Get(subject string) (text string, ok bool, err error)
	Len() int
	Close() error
}

// MemoryDescriptions is a DescriptionTable held in a map
type MemoryDescriptions struct {
	m map[string]string
}

// NewMemoryDescriptions creates an empty in-memory description table
func NewMemoryDescriptions() *MemoryDescriptions {
	return &MemoryDescriptions{m: make(map[string]string)}
}

func (d *MemoryDescriptions) Put(subject, text string) error {
	d.m[subject] = text
	return nil
}

func (d *MemoryDescriptions) Get(subject string) (string, bool, error) {
	text, ok := d.m[subject]
	return text, ok, nil
}

func (d *MemoryDescriptions) Len() int {
	return len(d.m)
}

func (d *MemoryDescriptions) Close() error {
	return nil
}
