// Package core parses bulk-import files into a project, its segments and
// their POI locations, or into a localized list of errors.
//
// This package is independent of any UI or transport layer. It can be used
// by web handlers, CLI tools, or tests without modification, and it never
// persists anything.
//
// # Pipeline
//
// One call runs strictly in order:
//
//  1. Read rows: [ReadWorkbook] (xlsx via excelize) or [ReadDelimited] (CSV)
//  2. Detect the grammar: the first registered [Adapter] whose Detect matches
//  3. Sectionize: group rows into PROJECT, SEGMENT and LOCATION sections,
//     dropping comment, blank and sample rows
//  4. Build entities row by row, normalizing localized labels to codes
//  5. Resolve each location to its segment (or visit-measurement group)
//  6. Apply the document-level business rules
//  7. Aggregate errors: project, segment, location, then business rules
//
// # Grammars
//
// Workbooks are recognized by sheet name, in this order:
//
//   - split (v4): "③セグメント・TG地点設定" and/or "④来店計測地点リスト"
//   - combined (v3): "3.セグメント・地点設定"
//   - merged (v2): "2.案件・セグメント設定"
//   - legacy (v1): "2.案件情報", "3.セグメント設定" and "4.地点リスト"
//
// Delimited text uses bracket markers:
//
//	[PROJECT]
//	advertiser_name,agency_name,appeal_point,...
//	株式会社A,代理店B,新商品の認知拡大,...
//	[SEGMENT]
//	segment_name,media,radius,...
//	[LOCATION:東京エリア]
//	poi_name,address,latitude,longitude
//
// # Error Handling
//
// Nothing short of an unreadable file or an unrecognized layout stops a
// parse. Every finding is a [ValidationError] with a catalogue code (see
// error_messages.go) so a user sees every problem at once.
package core
