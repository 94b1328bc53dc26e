// Package domain models earthquake event records and the predicates used to
// filter them across the map and timeline views.
//
// # Data Source
//
// Records come from yearly USGS-style CSV exports, one file per calendar year.
// Only five columns matter here:
//
//	time       ISO 8601 instant, e.g. "2024-03-14T06:21:33.512Z"
//	latitude   decimal degrees, WGS-84
//	longitude  decimal degrees, WGS-84
//	depth      kilometres below the surface
//	mag        magnitude (scale varies by network, treated as a plain number)
//
// Ingestion is permissive: a missing or non-numeric numeric column becomes 0
// and the problem is reported as a *ParseError alongside the record.
//
// # Predicate Conventions
//
// Each filter dimension has its own boundary convention, and the conventions
// are part of the observable behaviour:
//
//	spatial    lonMin <= lon < lonMax and latMin < lat <= latMax
//	temporal   start < t < end (both ends exclusive)
//	magnitude  min <= mag <= max for numeric filters, min <= mag < max for legend classes
//	depth      min <= depth <= max
//
// A NaN range bound never excludes anything.
//
// # Cross-View Keys
//
// Map markers and timeline marks refer to the same record through KeyOf, which
// is derived from the timestamp alone. The source data does not guarantee
// unique timestamps within a year; KeyCollisions reports the keys that clash
// and CompositeKeyOf offers a timestamp+coordinate alternative.
package domain
