// Package models contains the GORM persistence models of the storefront.
// Domain entities stay free of ORM tags; each model converts to and from its
// domain type with ToDomain / FromDomain and repositories only touch models.
package models
