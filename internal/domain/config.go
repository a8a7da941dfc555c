package domain

// DefaultKeyPrefix namespaces every key recodex writes.
const DefaultKeyPrefix = "recodex:"

// CatalogConfig holds the storage layout of the product catalog, not exposed to clients.
type CatalogConfig struct {
	KeyPrefix string
	IndexName string
}

// DefaultCatalogConfig returns the layout used when nothing is configured.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		KeyPrefix: DefaultKeyPrefix,
		IndexName: DefaultKeyPrefix + "products:idx",
	}
}

// WithPrefix returns a layout rooted at prefix. The index name follows the prefix.
func (c CatalogConfig) WithPrefix(prefix string) CatalogConfig {
	if prefix == "" {
		return c
	}
	return CatalogConfig{
		KeyPrefix: prefix,
		IndexName: prefix + "products:idx",
	}
}

// ProductKeyPrefix is the key prefix covered by the product index.
func (c CatalogConfig) ProductKeyPrefix() string {
	return c.KeyPrefix + "product:"
}

// ProductKey returns the storage key of a product.
func (c CatalogConfig) ProductKey(id string) string {
	return c.ProductKeyPrefix() + id
}
