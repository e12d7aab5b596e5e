package types

// WebContent is the opaque handle to a rendered page. The engine only
// creates, navigates and destroys handles; rendering lives elsewhere.
type WebContent interface {
	Load(url string) error
	GoBack() error
	GoForward() error
	Reload() error
	Close()
}

// WebContentFactory creates a content handle for a tab.
type WebContentFactory func(incognito bool) WebContent

// BlobStore is a key/value store for screenshot blobs.
type BlobStore interface {
	Update(key string, blob []byte) error
	Get(key string) ([]byte, error)
}
