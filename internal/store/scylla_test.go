package store

import (
	"github.com/gocql/gocql"
)

// Garde de compilation : la lecture des produits est pilotée par un
// gocql.Scanner, dont le Scan retourne une erreur (celui de l'itérateur
// brut retourne un booléen)
var _ interface{ Scan(...interface{}) error } = gocql.Scanner(nil)
