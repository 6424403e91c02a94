package domain

// MediaMap is the authoritative media key -> durable URL state. It performs
// no I/O and is not safe for concurrent use; the RelayService serializes
// every access.
type MediaMap struct {
	forward map[string]string
	reverse map[string]string
}

func NewMediaMap() *MediaMap {
	return &MediaMap{
		forward: make(map[string]string),
		reverse: make(map[string]string),
	}
}

// Put records key -> url, overwriting any previous mapping for key.
func (m *MediaMap) Put(key, url string) {
	if old, ok := m.forward[key]; ok {
		delete(m.reverse, old)
	}
	m.forward[key] = url
	m.reverse[url] = key
}

func (m *MediaMap) Get(key string) (string, bool) {
	url, ok := m.forward[key]
	return url, ok
}

// InvalidateByURL removes the mapping whose stored URL exactly equals url
// and returns the removed key. Matching is exact string equality: a
// substring match would false-invalidate when one URL is a prefix of
// another.
func (m *MediaMap) InvalidateByURL(url string) (string, bool) {
	key, ok := m.reverse[url]
	if !ok {
		return "", false
	}
	delete(m.reverse, url)
	delete(m.forward, key)
	return key, true
}

func (m *MediaMap) Len() int {
	return len(m.forward)
}
