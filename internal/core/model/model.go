// Package model defines the request-scoped values passed between the router and the executor.
package model

// BusDataQuery is the inbound /busdata query. BoundingBox is forwarded verbatim;
// it is expected to be "minLon,minLat,maxLon,maxLat" but is never checked.
type BusDataQuery struct {
	BoundingBox string
	// false when the parameter was absent from the request
	HasBoundingBox bool
}
