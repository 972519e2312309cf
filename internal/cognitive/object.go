// Package cognitive implements the format-agnostic object model: a
// schema-less entity with typed properties, tags, aliases, outbound
// links, and one or more serialization sources.
package cognitive

import "time"

// Object is the aggregate entity one note (or any resource) maps to.
// Construct with New or NewWithID; mutate only through methods so the
// updated timestamp stays truthful.
type Object struct {
	id        ObjectID
	createdAt int64
	updatedAt int64

	sources    []Source
	properties map[string]Value

	tags    []string
	aliases []string
	links   []ObjectID

	inferredType       string
	hasInferredType    bool
	equivalenceClasses []string
}

// New creates an object with a random identity.
func New() *Object {
	return NewWithID(NewID())
}

// NewWithID creates an object with the given identity.
func NewWithID(id ObjectID) *Object {
	now := time.Now().UnixMilli()
	return &Object{
		id:         id,
		createdAt:  now,
		updatedAt:  now,
		properties: make(map[string]Value),
	}
}

// touch bumps the updated timestamp. Every mutating method that actually
// changed state calls it; no-op mutations (duplicate adds, removes of
// absent keys) must not.
func (o *Object) touch() {
	o.updatedAt = time.Now().UnixMilli()
}

// ID returns the immutable identity.
func (o *Object) ID() ObjectID { return o.id }

// CreatedAt returns the creation time in Unix millis.
func (o *Object) CreatedAt() int64 { return o.createdAt }

// UpdatedAt returns the last-mutation time in Unix millis.
func (o *Object) UpdatedAt() int64 { return o.updatedAt }

// SetCreatedAt overrides the creation timestamp, for callers restoring
// an object from an external record. Does not count as a mutation.
func (o *Object) SetCreatedAt(millis int64) { o.createdAt = millis }

// SetProperty stores a property value under key, replacing any previous
// value.
func (o *Object) SetProperty(key string, v Value) {
	o.properties[key] = v
	o.touch()
}

// Property returns the value stored under key.
func (o *Object) Property(key string) (Value, bool) {
	v, ok := o.properties[key]
	return v, ok
}

// StringProperty returns the string payload of a String property, or ""
// when the key is absent or holds another variant.
func (o *Object) StringProperty(key string) string {
	if v, ok := o.properties[key]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ""
}

// RemoveProperty deletes a property. Returns true (and bumps the updated
// timestamp) only when the key was present.
func (o *Object) RemoveProperty(key string) bool {
	if _, ok := o.properties[key]; !ok {
		return false
	}
	delete(o.properties, key)
	o.touch()
	return true
}

// Properties returns the property map. Callers must not mutate it.
func (o *Object) Properties() map[string]Value { return o.properties }

// AddTag appends a tag. Duplicate adds are no-ops and do not bump the
// updated timestamp. Returns whether the tag was added.
func (o *Object) AddTag(tag string) bool {
	for _, t := range o.tags {
		if t == tag {
			return false
		}
	}
	o.tags = append(o.tags, tag)
	o.touch()
	return true
}

// Tags returns tags in insertion order.
func (o *Object) Tags() []string { return o.tags }

// AddAlias appends an alias with set semantics, like AddTag.
func (o *Object) AddAlias(alias string) bool {
	for _, a := range o.aliases {
		if a == alias {
			return false
		}
	}
	o.aliases = append(o.aliases, alias)
	o.touch()
	return true
}

// Aliases returns aliases in insertion order.
func (o *Object) Aliases() []string { return o.aliases }

// AddLink appends an outbound link with set semantics, like AddTag.
func (o *Object) AddLink(id ObjectID) bool {
	for _, l := range o.links {
		if l == id {
			return false
		}
	}
	o.links = append(o.links, id)
	o.touch()
	return true
}

// Links returns outbound links in insertion order.
func (o *Object) Links() []ObjectID { return o.links }

// AddSource appends a serialization source. Sources are append-only from
// the object's perspective.
func (o *Object) AddSource(s Source) {
	o.sources = append(o.sources, s)
	o.touch()
}

// Sources returns the sources in attach order.
func (o *Object) Sources() []Source { return o.sources }

// IsVirtual reports whether the object has no file-system backing: no
// sources at all, or only virtual ones.
func (o *Object) IsVirtual() bool {
	for _, s := range o.sources {
		switch s.(type) {
		case TextFileSource, BinaryFileSource:
			return false
		}
	}
	return true
}

// SetInferredType records the type assigned by an external rule stage.
func (o *Object) SetInferredType(t string) {
	o.inferredType = t
	o.hasInferredType = true
	o.touch()
}

// InferredType returns the rule-assigned type, if any.
func (o *Object) InferredType() (string, bool) {
	return o.inferredType, o.hasInferredType
}

// SetEquivalenceClasses records equivalence classes assigned by an
// external rule stage.
func (o *Object) SetEquivalenceClasses(classes []string) {
	o.equivalenceClasses = classes
	o.touch()
}

// EquivalenceClasses returns the rule-assigned equivalence classes.
func (o *Object) EquivalenceClasses() []string { return o.equivalenceClasses }

// EffectiveType resolves the object's type: an inferred type wins over
// an explicit "type" property. Empty when neither is set.
func (o *Object) EffectiveType() string {
	if o.hasInferredType {
		return o.inferredType
	}
	return o.StringProperty("type")
}
