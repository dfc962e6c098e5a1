// Package hal provides HAL-style hypermedia resource types and writers.
// A resource is a link table keyed by relation plus a flat property bag,
// serialized as {"_links": {...}, <properties...>}.
package hal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContentType is the media type written for enhanced resources.
const ContentType = "application/hal+json"

// JSONContentType is the media type for plain JSON responses.
const JSONContentType = "application/json"

// LinksKey is the reserved property name holding the link table.
const LinksKey = "_links"

// RelSelf is the relation of a resource's canonical location.
const RelSelf = "self"

// Link is a single hypermedia link.
type Link struct {
	Rel  string `json:"-"`
	Href string `json:"href"`
}

// Links is a link table keyed by relation.
// Relations are unique; re-adding a relation replaces the href but keeps
// the position of the first insertion.
type Links struct {
	order []string
	byRel map[string]Link
}

// NewLinks creates a link table holding the given links in order.
func NewLinks(links ...Link) Links {
	var l Links
	for _, link := range links {
		l.Add(link)
	}
	return l
}

// Add inserts or replaces the link for link.Rel.
func (l *Links) Add(link Link) {
	if l.byRel == nil {
		l.byRel = make(map[string]Link)
	}
	if _, exists := l.byRel[link.Rel]; !exists {
		l.order = append(l.order, link.Rel)
	}
	l.byRel[link.Rel] = link
}

// Get returns the link for a relation.
func (l Links) Get(rel string) (Link, bool) {
	link, ok := l.byRel[rel]
	return link, ok
}

// Self returns the self link.
func (l Links) Self() (Link, bool) {
	return l.Get(RelSelf)
}

// Rels returns the relations in insertion order.
func (l Links) Rels() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// All returns the links in insertion order.
func (l Links) All() []Link {
	out := make([]Link, 0, len(l.order))
	for _, rel := range l.order {
		out = append(out, l.byRel[rel])
	}
	return out
}

// Len returns the number of relations.
func (l Links) Len() int {
	return len(l.order)
}

// MarshalJSON writes the table as {"rel": {"href": "..."}, ...} in order.
func (l Links) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rel := range l.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, rel, l.byRel[rel]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Properties is an ordered property bag.
type Properties struct {
	keys   []string
	values map[string]any
}

// NewProperties creates an empty property bag with room for n entries.
func NewProperties(n int) Properties {
	return Properties{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set stores a value. An existing key keeps its position.
func (p *Properties) Set(key string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value stored under key.
func (p Properties) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p Properties) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of properties.
func (p Properties) Len() int {
	return len(p.keys)
}

// Map returns the properties as a plain map.
func (p Properties) Map() map[string]any {
	out := make(map[string]any, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.values[k]
	}
	return out
}

// MarshalJSON writes the bag as a JSON object in insertion order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, k, p.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Resource is a linked resource: a link table beside flattened properties.
type Resource struct {
	Links      Links
	Properties Properties
}

// MarshalJSON writes {"_links": {...}, <properties...>}.
// A property named "_links" is dropped; the link table owns that key.
func (r Resource) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, LinksKey, r.Links); err != nil {
		return nil, err
	}
	for _, k := range r.Properties.keys {
		if k == LinksKey {
			continue
		}
		buf.WriteByte(',')
		if err := writeMember(&buf, k, r.Properties.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode key %q: %w", key, err)
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode property %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
