// Package opensea holds marketplace-facing value types.
package opensea

// Metadata is the token metadata document uploaded to the
// content-addressable store and referenced by the ledger.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// NewMetadata builds a metadata document referencing an image by its
// content-addressed URL.
func NewMetadata(name string, description string, imageURL string) Metadata {
	return Metadata{
		Name:        name,
		Description: description,
		Image:       imageURL,
	}
}
