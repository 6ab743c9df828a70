package models

// Seller is the owner snapshot embedded in a plant listing.
type Seller struct {
	Name  string `bson:"name,omitempty"  json:"name,omitempty"  gorm:"size:255"`
	Email string `bson:"email"           json:"email"           gorm:"size:255;index"`
	Image string `bson:"image,omitempty" json:"image,omitempty" gorm:"size:1024"`
}

// Plant is an inventory listing. Quantity can go negative: stock
// adjustments are not floored.
type Plant struct {
	ID          string  `bson:"_id,omitempty"         json:"_id,omitempty"         gorm:"primaryKey;size:24"`
	Name        string  `bson:"name"                  json:"name"                  gorm:"size:255;not null"`
	Category    string  `bson:"category,omitempty"    json:"category,omitempty"    gorm:"size:100;index"`
	Description string  `bson:"description,omitempty" json:"description,omitempty" gorm:"type:text"`
	Image       string  `bson:"image,omitempty"       json:"image,omitempty"       gorm:"size:1024"`
	Price       float64 `bson:"price"                 json:"price"`
	Quantity    int     `bson:"quantity"              json:"quantity"`
	Seller      Seller  `bson:"seller"                json:"seller"                gorm:"embedded;embeddedPrefix:seller_"`
}
