package annot

// Map is an identifier keyed table of values that remembers the order in
// which identifiers were first seen. A repeated identifier keeps its first
// position and takes the latest value.
type Map struct {
	ids  []string
	vals map[string]float64
}

func NewMap() *Map {
	return &Map{vals: make(map[string]float64)}
}

func (m *Map) Set(id string, v float64) {
	if _, ok := m.vals[id]; !ok {
		m.ids = append(m.ids, id)
	}
	m.vals[id] = v
}

func (m *Map) Get(id string) (float64, bool) {
	v, ok := m.vals[id]
	return v, ok
}

func (m *Map) Contains(id string) bool {
	_, ok := m.vals[id]
	return ok
}

func (m *Map) Len() int {
	return len(m.ids)
}

// IDs returns a copy of the identifiers in first-seen order.
func (m *Map) IDs() []string {
	ans := make([]string, len(m.ids))
	copy(ans, m.ids)
	return ans
}

// Each calls fn for every entry in first-seen order.
func (m *Map) Each(fn func(id string, v float64)) {
	for _, id := range m.ids {
		fn(id, m.vals[id])
	}
}
