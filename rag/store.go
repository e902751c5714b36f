package rag

import "sync"

// NoteCollection maps document names to their extracted text.
// Names keep the order they were first added in.
type NoteCollection struct {
	mu    sync.RWMutex
	names []string
	texts map[string]string
}

func NewNoteCollection() *NoteCollection {
	return &NoteCollection{
		texts: map[string]string{},
	}
}

// Add stores text under name. Re-adding a name replaces the text but keeps
// its original position.
func (c *NoteCollection) Add(name, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.texts[name]; !ok {
		c.names = append(c.names, name)
	}
	c.texts[name] = text
}

func (c *NoteCollection) Get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.texts[name]
	return text, ok
}

// Names returns a copy of the document names in insertion order.
func (c *NoteCollection) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c *NoteCollection) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// snapshot copies the documents in insertion order so a search never holds
// the lock while scanning text.
func (c *NoteCollection) snapshot() []scoredDoc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs := make([]scoredDoc, 0, len(c.names))
	for _, name := range c.names {
		docs = append(docs, scoredDoc{Name: name, Text: c.texts[name]})
	}
	return docs
}

func (c *NoteCollection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = nil
	c.texts = map[string]string{}
}
