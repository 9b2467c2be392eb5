// Package imaging decodes fetched icon bytes and fits them to the square
// tile shown in list rows.
package imaging
