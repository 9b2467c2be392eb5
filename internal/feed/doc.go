// Package feed loads the top apps feed and maps its entries to
// model.FeedRecord values. RSS 2.0 and Atom are both accepted, including
// the iTunes "im:" element set.
package feed
