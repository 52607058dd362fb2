// Package index persists a partname index of resolved devices.
//
// The index maps every part name to its document, identifier properties
// and drivers, so tools can find the document describing a device without
// loading the whole catalog. Two stores are provided: a JSON file and a
// SQLite database. Open picks one by file extension.
package index
