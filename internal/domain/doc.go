// Package domain models the epidemiological case data served by the map.
//
// # Data Source
//
// All data comes from a static hosting location (a GitHub raw content tree by
// default). Nothing is produced here; files are fetched, parsed, reshaped and
// handed to the views.
//
//	latestCounts.json    [{"caseCount": "123", "deaths": "4", "date": "2020-04-01"}]
//	aggregate.json       {"2020-04-01": [{"code": "US", "cum_conf": 10, "cum_deaths": 1}]}
//	location_info.data   one "<geoid>:<city>|<province>|<country code>" per line
//	d/index.txt          one daily slice file name per line, newest first
//	d/<slice>            {"date": "2020-04-01", "features": [{"properties": {...}}]}
//	c/<CODE>.json        country-specific feature data
//
// The country reference table lives in a separate repository and is colon
// delimited:
//
//	<continent>:<code>:<name>:<population>:<bbox>|<bbox>...
//
// Each bounding box is "minLng,minLat,maxLng,maxLat".
//
// # Geoids
//
// A geoid is the composite key "latitude|longitude", e.g. "40.7128|-74.006".
// Records with no properties get the placeholder geoid "0|0". Note that the
// geoid order (lat first) is the reverse of GeoJSON coordinate order
// (lng first); [FormatFeature] performs the swap.
//
// # Aggregation
//
// Each daily slice is rolled up into per-province and per-country totals by
// summing the "total" and "new" properties of every feature whose geoid has a
// location_info entry. Features with unknown geoids are left out of the
// roll-up. Aggregate data drops dates that have no records.
package domain
