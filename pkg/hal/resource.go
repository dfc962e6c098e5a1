package hal

// ResourceBuilder provides a fluent API for building Resource objects.
type ResourceBuilder struct {
	resource Resource
}

// NewResource creates a builder whose resource has the given self href.
func NewResource(selfHref string) *ResourceBuilder {
	b := &ResourceBuilder{}
	return b.Link(RelSelf, selfHref)
}

// Link adds a link to the resource.
func (b *ResourceBuilder) Link(rel, href string) *ResourceBuilder {
	b.resource.Links.Add(Link{Rel: rel, Href: href})
	return b
}

// AddLink adds a prebuilt link.
func (b *ResourceBuilder) AddLink(l Link) *ResourceBuilder {
	b.resource.Links.Add(l)
	return b
}

// Prop sets a single property.
func (b *ResourceBuilder) Prop(key string, value any) *ResourceBuilder {
	b.resource.Properties.Set(key, value)
	return b
}

// Props merges properties in their order.
func (b *ResourceBuilder) Props(p Properties) *ResourceBuilder {
	for _, k := range p.keys {
		b.resource.Properties.Set(k, p.values[k])
	}
	return b
}

// Build returns the constructed Resource.
func (b *ResourceBuilder) Build() Resource {
	return b.resource
}
