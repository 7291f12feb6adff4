package model

// Package model contains domain models/data structures.
// Keep it free of persistence and transport concerns; no business logic here.

// Document categories. The library category holds the shared team document
// collection; the bonus category holds standalone bonus PDFs with a tighter
// upload limit.
const (
	CategoryLibrary = "library"
	CategoryBonus   = "bonus"
)
