package models

// OrderStatus values the storefront uses. The set is open: sellers may
// write any non-empty status.
const (
	OrderPending    = "Pending"
	OrderProcessing = "Processing"
	OrderDelivered  = "Delivered"
)

// Customer is the buyer snapshot embedded in an order.
type Customer struct {
	Name  string `bson:"name,omitempty"  json:"name,omitempty"  gorm:"size:255"`
	Email string `bson:"email"           json:"email"           gorm:"size:255;index"`
	Image string `bson:"image,omitempty" json:"image,omitempty" gorm:"size:1024"`
}

// Order references its plant by hex id. Seller is the seller's email.
type Order struct {
	ID        string   `bson:"_id,omitempty"       json:"_id,omitempty"       gorm:"primaryKey;size:24"`
	PlantID   string   `bson:"plantId"             json:"plantId"             gorm:"column:plant_id;size:24;index"`
	Customer  Customer `bson:"customer"            json:"customer"            gorm:"embedded;embeddedPrefix:customer_"`
	Seller    string   `bson:"seller"              json:"seller"              gorm:"size:255;index"`
	Quantity  int      `bson:"quantity"            json:"quantity"`
	Price     float64  `bson:"price"               json:"price"`
	Address   string   `bson:"address,omitempty"   json:"address,omitempty"   gorm:"size:512"`
	Status    string   `bson:"status"              json:"status"              gorm:"size:50;not null"`
	Timestamp int64    `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// OrderView is an order joined with fields copied from its plant. The seller
// view only carries Name.
type OrderView struct {
	Order    `bson:",inline"`
	Name     string `bson:"name,omitempty"     json:"name,omitempty"`
	Image    string `bson:"image,omitempty"    json:"image,omitempty"`
	Category string `bson:"category,omitempty" json:"category,omitempty"`
}
