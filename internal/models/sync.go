package models

// SyncItem est un produit entrant d'un lot de synchronisation.
// Les clés inconnues du payload sont ignorées : seuls les champs
// recopiés sur le produit sont validés.
type SyncItem struct {
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Category    string         `json:"category"`
	Stock       int            `json:"stock"`
	Status      ProductStatus  `json:"status"`
	Images      []ProductImage `json:"images"`
	Tags        []string       `json:"tags"`
	Vendor      string         `json:"vendor"`
}

// SyncResult résume l'issue d'un lot de synchronisation
type SyncResult struct {
	Created  int   `json:"created"`
	Updated  int   `json:"updated"`
	Errors   int   `json:"errors"`
	Total    int   `json:"total"`
	Duration int64 `json:"duration"` // millisecondes
}
