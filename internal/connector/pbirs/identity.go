package pbirs

// Keyed is implemented by entities whose identity is their server id rather
// than their full structure.
type Keyed interface {
	Key() string
}

// Key returns the identity of the dataset.
func (d DataSet) Key() string { return d.Id }

// Equal reports whether both datasets are the same server entity.
func (d DataSet) Equal(other DataSet) bool { return d.Key() == other.Key() }

// Key returns the identity of the data source.
func (d DataSource) Key() string { return d.Id }

// Equal reports whether both data sources are the same server entity.
func (d DataSource) Equal(other DataSource) bool { return d.Key() == other.Key() }

// UniqueByKey drops later entries whose key was already seen.
func UniqueByKey[T Keyed](items []T) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := item.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// ResolveDataSource returns a copy of ds with its relational metadata
// resolved against mapping. A mapped type is relational and picks up the
// database and server from details when they are known.
func ResolveDataSource(ds DataSource, mapping map[string]string, details *ConnectionDetails) DataSource {
	_, relational := mapping[ds.Type]
	ds.MetaData = &MetaData{IsRelational: relational}
	ds.Database = nil
	ds.Server = nil
	if relational && details != nil {
		database, server := details.Database, details.Server
		ds.Database = &database
		ds.Server = &server
	}
	return ds
}
