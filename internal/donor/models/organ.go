package models

import id "sndot/pkg/domain"

// Organ is a reference entity; names are unique.
type Organ struct {
	ID   id.OrganID `json:"id"`
	Name string     `json:"name"`
}

// OrganCatalog is the fixed list seeded into every deployment.
var OrganCatalog = []string{
	"Coração",
	"Rins",
	"Fígado",
	"Pâncreas",
	"Pulmões",
	"Intestino",
	"Córneas",
	"Pele",
	"Ossos",
	"Válvulas cardíacas",
	"Cartilagem",
	"Medula Óssea",
	"Tendões",
	"Vasos Sanguíneos",
	"Sangue de Cordão Umbilical",
	"Sangue Universal",
}
