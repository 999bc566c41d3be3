// Package message decodes the metadata messages published on the bus.
//
// Messages carry a type and a data mapping. The type selects one of the Kind
// values; the data is what ends up in the document store. Timestamps in the
// data are decoded to time.Time so they are stored as dates and can be
// compared in range queries.
package message
