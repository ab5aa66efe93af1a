package models

type EntityKind string

const (
	EntityProduct EntityKind = "product"
	EntityStore   EntityKind = "store"
)

// Ownership is the validated owner chain for a request. It is produced only by
// the ownership validator and is never mutated afterwards.
type Ownership struct {
	Kind      EntityKind `json:"kind"`
	StoreID   int64      `json:"store_id"`
	ProductID int64      `json:"product_id,omitempty"`
	ImageID   int64      `json:"image_id,omitempty"`
	OwnerName string     `json:"owner_name"`
}

// EntityID is the id of the entity whose images are being requested.
func (o Ownership) EntityID() int64 {
	if o.Kind == EntityProduct {
		return o.ProductID
	}
	return o.StoreID
}
