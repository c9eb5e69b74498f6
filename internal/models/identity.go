package models

import "time"

// DefaultDisplayName is shown for records that were stored without a name.
const DefaultDisplayName = "Mahasiswa"

// Identity is one registered student. The document is addressed by the
// normalized identifier, which is also stored in NormalizedKey.
type Identity struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Identifier    string    `bson:"identifier,omitempty" json:"identifier,omitempty"`
	Name          string    `bson:"name,omitempty" json:"name,omitempty"`
	Email         string    `bson:"email,omitempty" json:"email,omitempty"`
	Credential    string    `bson:"credential" json:"credential"`
	NormalizedKey string    `bson:"normalizedKey" json:"normalizedKey"`
	CreatedAt     time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Key returns the document address, preferring the stored _id.
func (i *Identity) Key() string {
	if i.ID != "" {
		return i.ID
	}
	return i.NormalizedKey
}
