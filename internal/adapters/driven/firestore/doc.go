// Package firestore provides the Firestore-backed GeoIndex and DocumentStore.
//
// Jelly documents live in one collection and are looked up by their id
// field. Locations live in a second collection laid out the GeoFire way:
// each document is named by its geo key and holds
//
//	g  geohash of the location (string)
//	l  location, either a geopoint or a [latitude, longitude] array
//
// Region queries scan the geohash ranges covering the region's bounding
// box and drop entries outside the region before reporting them.
package firestore
