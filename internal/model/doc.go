package model

// Package model defines the domain data used across the app: feed records,
// the ordered record store the list renders from, and the icon task status
// enum. Records are mutated only through the store so the UI and the icon
// coordinator agree on what a row currently shows.
